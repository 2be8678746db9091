package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use. pgxmock
// pools satisfy it too.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ReportRepositoryInterface defines operations for non-verbal report storage
type ReportRepositoryInterface interface {
	Save(ctx context.Context, report *domain.SessionReport) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.SessionReport, error)
	Delete(ctx context.Context, sessionID string) error
}

// SpeechReportRepositoryInterface defines operations for speech report storage
type SpeechReportRepositoryInterface interface {
	Save(ctx context.Context, report *domain.SpeechReport) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.SpeechReport, error)
}
