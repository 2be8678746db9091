package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

type SpeechReportRepository struct {
	pool PgxPool
}

func NewSpeechReportRepository(pool PgxPool) *SpeechReportRepository {
	return &SpeechReportRepository{pool: pool}
}

func (r *SpeechReportRepository) Save(ctx context.Context, report *domain.SpeechReport) error {
	query := `
		INSERT INTO speech_reports (
			id, session_id, word_count, duration_seconds, avg_wpm,
			filler_count, filler_rate, pause_count, pause_ratio,
			energy, pitch_mean, pitch_variation, confidence_score, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			word_count = EXCLUDED.word_count,
			duration_seconds = EXCLUDED.duration_seconds,
			avg_wpm = EXCLUDED.avg_wpm,
			filler_count = EXCLUDED.filler_count,
			filler_rate = EXCLUDED.filler_rate,
			pause_count = EXCLUDED.pause_count,
			pause_ratio = EXCLUDED.pause_ratio,
			energy = EXCLUDED.energy,
			pitch_mean = EXCLUDED.pitch_mean,
			pitch_variation = EXCLUDED.pitch_variation,
			confidence_score = EXCLUDED.confidence_score
		RETURNING id, created_at
	`

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	m := report.Metrics
	err := r.pool.QueryRow(ctx, query,
		report.ID,
		report.SessionID,
		m.WordCount,
		m.DurationSeconds,
		m.AvgWPM,
		m.FillerCount,
		m.FillerRate,
		m.PauseCount,
		m.PauseRatio,
		m.Energy,
		m.PitchMean,
		m.PitchVariation,
		report.ConfidenceScore,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("save speech report: %w", err)
	}

	return nil
}

func (r *SpeechReportRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.SpeechReport, error) {
	query := `
		SELECT id, session_id, word_count, duration_seconds, avg_wpm,
			filler_count, filler_rate, pause_count, pause_ratio,
			energy, pitch_mean, pitch_variation, confidence_score, created_at
		FROM speech_reports
		WHERE session_id = $1
	`

	var report domain.SpeechReport
	m := &report.Metrics
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&report.ID,
		&report.SessionID,
		&m.WordCount,
		&m.DurationSeconds,
		&m.AvgWPM,
		&m.FillerCount,
		&m.FillerRate,
		&m.PauseCount,
		&m.PauseRatio,
		&m.Energy,
		&m.PitchMean,
		&m.PitchVariation,
		&report.ConfidenceScore,
		&report.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get speech report: %w", err)
	}

	return &report, nil
}

var _ SpeechReportRepositoryInterface = (*SpeechReportRepository)(nil)
