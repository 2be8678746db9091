// Package speech captures interview answers as audio and transcripts and
// scores their delivery.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt"
)

const defaultSampleRate = 16000

// Store persists speech reports. repository.SpeechReportRepository is the
// Postgres implementation.
type Store interface {
	Save(ctx context.Context, report *domain.SpeechReport) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.SpeechReport, error)
}

type capture struct {
	audio   []byte
	finals  []string
	words   []domain.Word
	answers map[string]domain.SpeechAnswer
}

func newCapture() *capture {
	return &capture{answers: make(map[string]domain.SpeechAnswer)}
}

type Service struct {
	mu         sync.Mutex
	sessions   map[string]*capture
	recognizer stt.Provider
	store      Store
	sampleRate int
	logger     *slog.Logger
	metrics    *observe.Metrics
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

// WithStore enables persistence of analyzed sessions.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithSampleRate(rate int) Option {
	return func(s *Service) {
		s.sampleRate = rate
	}
}

func NewService(recognizer stt.Provider, opts ...Option) *Service {
	s := &Service{
		sessions:   make(map[string]*capture),
		recognizer: recognizer,
		sampleRate: defaultSampleRate,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// captureFor returns the session capture, creating it. Callers hold s.mu.
func (s *Service) captureFor(sessionID string) *capture {
	c, ok := s.sessions[sessionID]
	if !ok {
		c = newCapture()
		s.sessions[sessionID] = c
	}
	return c
}

func (s *Service) appendAudio(sessionID string, chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.captureFor(sessionID)
	c.audio = append(c.audio, chunk...)
}

func (s *Service) appendFinal(sessionID, text string, words []domain.Word) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.captureFor(sessionID)
	c.finals = append(c.finals, text)
	c.words = append(c.words, words...)
}

// capturedSeconds is the audio already stored for the session.
func (s *Service) capturedSeconds(sessionID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.captureFor(sessionID)
	return float64(len(c.audio)/2) / float64(s.sampleRate)
}

// SubmitAnswer stores the transcript of one question and returns it with
// fillers removed.
func (s *Service) SubmitAnswer(sessionID, questionID, raw string) (domain.SpeechAnswer, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(questionID) == "" {
		return domain.SpeechAnswer{}, domain.ErrValidationFailed.WithError(
			fmt.Errorf("session_id and question_id are required"))
	}

	clean := CleanTranscript(raw)
	answer := domain.SpeechAnswer{
		SessionID:       sessionID,
		QuestionID:      questionID,
		RawTranscript:   raw,
		CleanTranscript: clean,
		WordCount:       len(strings.Fields(clean)),
	}

	s.mu.Lock()
	s.captureFor(sessionID).answers[questionID] = answer
	s.mu.Unlock()

	return answer, nil
}

// Answers returns the submitted answers of a session keyed by question.
func (s *Service) Answers(sessionID string) map[string]domain.SpeechAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make(map[string]domain.SpeechAnswer, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

// Analyze scores everything captured for the session and persists the
// report when a store is configured.
func (s *Service) Analyze(ctx context.Context, sessionID string) (*domain.SpeechReport, error) {
	s.mu.Lock()
	c, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrSpeechSessionNotFound
	}
	in := Input{
		Transcript: strings.Join(c.finals, " "),
		Words:      append([]domain.Word(nil), c.words...),
		Samples:    DecodePCM16(c.audio),
		SampleRate: s.sampleRate,
	}
	s.mu.Unlock()

	metrics, confidence, err := Compute(in)
	if err != nil {
		return nil, err
	}
	report := &domain.SpeechReport{
		SessionID:       sessionID,
		Metrics:         metrics,
		ConfidenceScore: confidence,
	}

	if s.store != nil {
		if err := s.store.Save(ctx, report); err != nil {
			return nil, fmt.Errorf("save speech report: %w", err)
		}
	}

	s.logger.Info("speech session analyzed",
		"session_id", sessionID,
		"word_count", metrics.WordCount,
		"avg_wpm", metrics.AvgWPM,
		"confidence_score", confidence,
	)
	return report, nil
}

// Report returns a persisted speech report.
func (s *Service) Report(ctx context.Context, sessionID string) (*domain.SpeechReport, error) {
	if s.store == nil {
		return nil, domain.ErrReportNotFound
	}
	return s.store.GetBySessionID(ctx, sessionID)
}

// Forget drops everything captured for a session.
func (s *Service) Forget(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}
