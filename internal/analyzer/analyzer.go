// Package analyzer drives the per-frame pipeline for each session and turns
// stage results into output envelopes.
package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/integrity"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
	"github.com/saturnino-fabrica-de-software/poise/internal/pipeline"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider"
	"github.com/saturnino-fabrica-de-software/poise/internal/session"
)

type Analyzer struct {
	registry *session.Registry
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
	metrics  *observe.Metrics
}

type Option func(*Analyzer)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

func WithRegistry(r *session.Registry) Option {
	return func(a *Analyzer) {
		a.registry = r
	}
}

// New wires the standard pipeline over the given detectors.
func New(faces provider.FaceMeshDetector, pose provider.PoseDetector, opts ...Option) *Analyzer {
	a := &Analyzer{
		registry: session.NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	var popts []pipeline.Option
	if a.metrics != nil {
		m := a.metrics
		popts = append(popts, pipeline.WithObserver(func(stage string, elapsed time.Duration, r pipeline.Result) {
			m.RecordStage(context.Background(), stage, pipeline.Outcome(r), elapsed)
		}))
	}
	a.pipeline = pipeline.New(faces, pose, integrity.NewEnforcer(), popts...)
	return a
}

// Registry exposes the session registry.
func (a *Analyzer) Registry() *session.Registry {
	return a.registry
}

// ProcessFrame analyzes one frame of a session and always returns an
// envelope. Frames of one session must be submitted sequentially.
func (a *Analyzer) ProcessFrame(ctx context.Context, sessionID string, frame *domain.Frame) domain.Envelope {
	state, created := a.registry.GetOrCreate(sessionID)
	if created {
		a.logger.Info("session started", "session_id", sessionID)
		if a.metrics != nil {
			a.metrics.ActiveSessions.Add(ctx, 1)
		}
	}

	env := a.process(ctx, sessionID, state, frame)
	if a.metrics != nil {
		a.metrics.RecordFrame(ctx, string(env.Status))
	}
	return env
}

func (a *Analyzer) process(ctx context.Context, sessionID string, state *session.State, frame *domain.Frame) domain.Envelope {
	state.Lock()
	if !state.CanProcessFrame() {
		reason := state.CancellationReason
		state.Unlock()
		return domain.NewCancelledEnvelope(reason)
	}

	result, stage := a.pipeline.Run(pipeline.NewContext(ctx, frame, state))

	switch r := result.(type) {
	case pipeline.Fail:
		state.Unlock()
		a.logger.Debug("insufficient data", "session_id", sessionID, "stage", stage, "reason", r.Message)
		return domain.NewInsufficientDataEnvelope(r.Message)

	case pipeline.Cancel:
		state.Unlock()
		a.registry.Cancel(sessionID, r.Reason)
		a.logger.Warn("session cancelled", "session_id", sessionID, "reason", r.Reason)
		if a.metrics != nil {
			a.metrics.RecordCancellation(ctx, r.Reason)
		}
		return domain.NewCancelledEnvelope(r.Reason)

	case pipeline.Skip:
		state.Unlock()
		a.logger.Debug("frame skipped", "session_id", sessionID, "reason", r.Reason)
		return domain.NewFrameSkippedEnvelope(r.Reason)

	default:
		scores, insights := composite(state)
		state.Unlock()
		return domain.NewActiveEnvelope(scores, insights)
	}
}

// Summary reports the counters of a live session. Unknown and cancelled
// sessions yield domain.ErrSessionNotFound.
func (a *Analyzer) Summary(sessionID string) (domain.SessionSummary, error) {
	if !a.registry.Validate(sessionID) {
		return domain.SessionSummary{}, domain.ErrSessionNotFound
	}
	state, ok := a.registry.Lookup(sessionID)
	if !ok {
		return domain.SessionSummary{}, domain.ErrSessionNotFound
	}
	duration, _ := a.registry.Duration(sessionID)
	snap := state.Snapshot()

	summary := domain.SessionSummary{
		SessionID:            sessionID,
		DurationSeconds:      duration.Seconds(),
		TotalFramesProcessed: snap.TotalProcessedFrames,
		EyeContactFrames:     snap.EyeContactFrames,
		IsCancelled:          snap.IsCancelled,
	}
	if snap.CancellationReason != "" {
		reason := snap.CancellationReason
		summary.CancellationReason = &reason
	}
	return summary, nil
}

// DeleteSession forgets a session. Unknown ids are ignored.
func (a *Analyzer) DeleteSession(sessionID string) {
	if _, ok := a.registry.Lookup(sessionID); !ok {
		return
	}
	a.registry.Delete(sessionID)
	a.logger.Info("session deleted", "session_id", sessionID)
	if a.metrics != nil {
		a.metrics.ActiveSessions.Add(context.Background(), -1)
	}
}
