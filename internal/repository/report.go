package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

type ReportRepository struct {
	pool PgxPool
}

func NewReportRepository(pool PgxPool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Save upserts the report. A session is finalized once, but a retried
// DELETE may finalize it again; the newest aggregate wins.
func (r *ReportRepository) Save(ctx context.Context, report *domain.SessionReport) error {
	query := `
		INSERT INTO session_reports (
			id, session_id, total_frames, analyzed_frames,
			eye_contact, facial_expression, posture, stability, final_score,
			pass_status, pass_threshold, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			total_frames = EXCLUDED.total_frames,
			analyzed_frames = EXCLUDED.analyzed_frames,
			eye_contact = EXCLUDED.eye_contact,
			facial_expression = EXCLUDED.facial_expression,
			posture = EXCLUDED.posture,
			stability = EXCLUDED.stability,
			final_score = EXCLUDED.final_score,
			pass_status = EXCLUDED.pass_status,
			pass_threshold = EXCLUDED.pass_threshold
		RETURNING id, created_at
	`

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		report.ID,
		report.SessionID,
		report.TotalFrames,
		report.AnalyzedFrames,
		report.Scores.EyeContact,
		report.Scores.FacialExpression,
		report.Scores.Posture,
		report.Scores.Stability,
		report.Scores.Final,
		report.PassStatus,
		report.PassThreshold,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("save session report: %w", err)
	}

	return nil
}

func (r *ReportRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.SessionReport, error) {
	query := `
		SELECT id, session_id, total_frames, analyzed_frames,
			eye_contact, facial_expression, posture, stability, final_score,
			pass_status, pass_threshold, created_at
		FROM session_reports
		WHERE session_id = $1
	`

	var report domain.SessionReport
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&report.ID,
		&report.SessionID,
		&report.TotalFrames,
		&report.AnalyzedFrames,
		&report.Scores.EyeContact,
		&report.Scores.FacialExpression,
		&report.Scores.Posture,
		&report.Scores.Stability,
		&report.Scores.Final,
		&report.PassStatus,
		&report.PassThreshold,
		&report.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session report: %w", err)
	}

	return &report, nil
}

func (r *ReportRepository) Delete(ctx context.Context, sessionID string) error {
	query := `DELETE FROM session_reports WHERE session_id = $1`

	result, err := r.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("delete session report: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}

	return nil
}

var _ ReportRepositoryInterface = (*ReportRepository)(nil)
