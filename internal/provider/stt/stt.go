// Package stt defines the streaming speech-to-text contract used by the
// voice endpoint. A SessionHandle accepts raw PCM16 mono audio and emits
// interim partials and committed finals on separate channels.
package stt

import (
	"context"
	"errors"
	"time"
)

// ErrSessionClosed is returned by SendAudio after Close.
var ErrSessionClosed = errors.New("stt: session is closed")

// StreamConfig describes the audio format of a stream.
type StreamConfig struct {
	// SampleRate in Hz. The browser client sends 16000.
	SampleRate int

	// Words asks the backend for per-word timings on finals.
	Words bool
}

// Transcript is a partial or final recognition result.
type Transcript struct {
	Text    string
	IsFinal bool
	Words   []WordDetail
}

// WordDetail holds a recognized word with its offsets from stream start.
type WordDetail struct {
	Word       string
	Start      time.Duration
	End        time.Duration
	Confidence float64
}

// SessionHandle is one open recognition stream. Callers must drain both
// channels until they close and must call Close when done. Close flushes
// buffered audio, so finals may still arrive after it is called.
type SessionHandle interface {
	SendAudio(chunk []byte) error
	Partials() <-chan Transcript
	Finals() <-chan Transcript
	Close() error
}

// Provider opens recognition streams.
type Provider interface {
	StartStream(ctx context.Context, cfg StreamConfig) (SessionHandle, error)
}
