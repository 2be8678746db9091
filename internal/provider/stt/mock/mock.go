// Package mock provides test doubles for the stt interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt"
)

// Provider returns Session from StartStream, or a fresh Session when nil.
type Provider struct {
	mu sync.Mutex

	Session        *Session
	StartStreamErr error
	Configs        []stt.StreamConfig
}

func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Configs = append(p.Configs, cfg)
	if p.StartStreamErr != nil {
		return nil, p.StartStreamErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	return NewSession(), nil
}

// Session echoes nothing by itself; tests push transcripts with Emit. Close
// closes both channels, so Emit must not be called after it.
type Session struct {
	mu       sync.Mutex
	partials chan stt.Transcript
	finals   chan stt.Transcript
	closed   bool

	SendAudioErr error
	Chunks       [][]byte
	CloseCalls   int

	// OnAudio, when set, runs for each accepted chunk and may call Emit.
	OnAudio func(s *Session, chunk []byte)
}

func NewSession() *Session {
	return &Session{
		partials: make(chan stt.Transcript, 64),
		finals:   make(chan stt.Transcript, 64),
	}
}

func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return stt.ErrSessionClosed
	}
	if s.SendAudioErr != nil {
		s.mu.Unlock()
		return s.SendAudioErr
	}
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	s.Chunks = append(s.Chunks, cp)
	hook := s.OnAudio
	s.mu.Unlock()

	if hook != nil {
		hook(s, chunk)
	}
	return nil
}

// Emit delivers a transcript on the matching channel.
func (s *Session) Emit(t stt.Transcript) {
	if t.IsFinal {
		s.finals <- t
		return
	}
	s.partials <- t
}

func (s *Session) Partials() <-chan stt.Transcript { return s.partials }

func (s *Session) Finals() <-chan stt.Transcript { return s.finals }

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCalls++
	if !s.closed {
		s.closed = true
		close(s.partials)
		close(s.finals)
	}
	return nil
}

// ChunkCount returns how many chunks were accepted.
func (s *Session) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Chunks)
}

var (
	_ stt.Provider      = (*Provider)(nil)
	_ stt.SessionHandle = (*Session)(nil)
)
