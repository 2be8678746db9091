// Package report keeps the scored history of each session and turns it into
// the end-of-session pass/fail report.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
)

type history struct {
	frames int
	scored []domain.Scores
	last   *domain.Scores
}

type Service struct {
	mu       sync.Mutex
	sessions map[string]*history
	store    Store
	logger   *slog.Logger
	metrics  *observe.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a report service. A nil store falls back to memory.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Service{
		sessions: make(map[string]*history),
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open starts a fresh history for the session, discarding any previous one.
func (s *Service) Open(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &history{}
}

// Observe records one decoded frame and its envelope. Only active envelopes
// with a final score enter the history.
func (s *Service) Observe(sessionID string, env domain.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[sessionID]
	if !ok {
		h = &history{}
		s.sessions[sessionID] = h
	}
	h.frames++

	if env.Status != domain.StatusActive || env.Scores.Final == nil {
		return
	}
	scores := env.Scores
	h.scored = append(h.scored, scores)
	h.last = &scores
}

// LastScores returns the most recent fully scored frame of the session.
func (s *Service) LastScores(sessionID string) (domain.Scores, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[sessionID]
	if !ok || h.last == nil {
		return domain.Scores{}, false
	}
	return *h.last, true
}

// Analyze builds the report from the current history without persisting it.
func (s *Service) Analyze(sessionID string) (domain.SessionReport, error) {
	s.mu.Lock()
	h, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return domain.SessionReport{}, domain.ErrSessionNotFound
	}
	scored := make([]domain.Scores, len(h.scored))
	copy(scored, h.scored)
	frames := h.frames
	s.mu.Unlock()

	return Aggregate(sessionID, frames, scored), nil
}

// Finalize analyzes the session, persists the report and drops the history.
func (s *Service) Finalize(ctx context.Context, sessionID string) (*domain.SessionReport, error) {
	r, err := s.Analyze(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, &r); err != nil {
		return nil, fmt.Errorf("finalize report: %w", err)
	}
	s.Forget(sessionID)

	s.logger.Info("session report finalized",
		"session_id", sessionID,
		"pass_status", r.PassStatus,
		"analyzed_frames", r.AnalyzedFrames,
		"total_frames", r.TotalFrames,
	)
	if s.metrics != nil {
		s.metrics.RecordReport(ctx, r.PassStatus)
	}
	return &r, nil
}

// Get returns a persisted report.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.SessionReport, error) {
	return s.store.GetBySessionID(ctx, sessionID)
}

// Forget drops the in-memory history of a session.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
