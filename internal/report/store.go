package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

// Store persists finalized reports. repository.ReportRepository is the
// Postgres implementation.
type Store interface {
	Save(ctx context.Context, report *domain.SessionReport) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.SessionReport, error)
}

// MemoryStore keeps reports in process memory. Used when no database is
// configured.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]domain.SessionReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]domain.SessionReport)}
}

func (m *MemoryStore) Save(_ context.Context, report *domain.SessionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.reports[report.SessionID]; ok {
		report.ID = prev.ID
		report.CreatedAt = prev.CreatedAt
	} else {
		if report.ID == uuid.Nil {
			report.ID = uuid.New()
		}
		report.CreatedAt = time.Now().UTC()
	}
	m.reports[report.SessionID] = *report
	return nil
}

func (m *MemoryStore) GetBySessionID(_ context.Context, sessionID string) (*domain.SessionReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[sessionID]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return &r, nil
}

var _ Store = (*MemoryStore)(nil)
