package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt"
)

// Event is one message for the voice client: exactly one field is set.
type Event struct {
	Partial *string `json:"partial,omitempty"`
	Final   *string `json:"final,omitempty"`
}

const eventBuffer = 128

// Stream is one question's live recognition. Audio written to it is kept in
// the session capture and forwarded to the recognizer.
type Stream struct {
	svc        *Service
	sessionID  string
	questionID string
	handle     stt.SessionHandle
	offset     float64
	events     chan Event
	forwarded  sync.WaitGroup
	closeOnce  sync.Once
}

// OpenStream starts recognition for a question of the session.
func (s *Service) OpenStream(ctx context.Context, sessionID, questionID string) (*Stream, error) {
	if s.recognizer == nil {
		return nil, domain.ErrSpeechUnavailable
	}
	offset := s.capturedSeconds(sessionID)

	handle, err := s.recognizer.StartStream(ctx, stt.StreamConfig{SampleRate: s.sampleRate, Words: true})
	if err != nil {
		s.logger.Error("speech recognizer unavailable", "session_id", sessionID, "error", err)
		return nil, domain.ErrSpeechUnavailable.WithError(err)
	}

	st := &Stream{
		svc:        s,
		sessionID:  sessionID,
		questionID: questionID,
		handle:     handle,
		offset:     offset,
		events:     make(chan Event, eventBuffer),
	}
	st.forwarded.Add(1)
	go st.forward()

	s.logger.Info("voice stream opened", "session_id", sessionID, "question_id", questionID)
	if s.metrics != nil {
		s.metrics.SpeechStreams.Add(ctx, 1)
	}
	return st, nil
}

// Write captures and forwards one PCM16 chunk.
func (st *Stream) Write(chunk []byte) error {
	st.svc.appendAudio(st.sessionID, chunk)
	return st.handle.SendAudio(chunk)
}

// Events emits partial and final transcripts; it closes after Close once
// the recognizer has flushed.
func (st *Stream) Events() <-chan Event {
	return st.events
}

// Close flushes the recognizer and waits for its last results.
func (st *Stream) Close() error {
	var err error
	st.closeOnce.Do(func() {
		err = st.handle.Close()
		st.forwarded.Wait()
		st.svc.logger.Info("voice stream closed", "session_id", st.sessionID, "question_id", st.questionID)
		if st.svc.metrics != nil {
			st.svc.metrics.SpeechStreams.Add(context.Background(), -1)
		}
	})
	return err
}

func (st *Stream) forward() {
	defer st.forwarded.Done()
	defer close(st.events)

	partials, finals := st.handle.Partials(), st.handle.Finals()
	for partials != nil || finals != nil {
		select {
		case t, ok := <-partials:
			if !ok {
				partials = nil
				continue
			}
			if t.Text == "" {
				continue
			}
			text := t.Text
			st.emit(Event{Partial: &text})

		case t, ok := <-finals:
			if !ok {
				finals = nil
				continue
			}
			text := strings.TrimSpace(t.Text)
			if text == "" {
				continue
			}
			st.svc.appendFinal(st.sessionID, text, st.words(t.Words))
			st.emit(Event{Final: &text})
		}
	}
}

// emit never blocks; a client that stops reading loses events, not audio.
func (st *Stream) emit(ev Event) {
	select {
	case st.events <- ev:
	default:
		st.svc.logger.Debug("voice event dropped", "session_id", st.sessionID)
	}
}

func (st *Stream) words(details []stt.WordDetail) []domain.Word {
	out := make([]domain.Word, 0, len(details))
	for _, w := range details {
		out = append(out, domain.Word{
			Text:  w.Word,
			Start: st.offset + w.Start.Seconds(),
			End:   st.offset + w.End.Seconds(),
			Conf:  w.Confidence,
		})
	}
	return out
}
