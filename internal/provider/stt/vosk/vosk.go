// Package vosk streams audio to a Vosk server (alphacep/kaldi-*) over its
// websocket protocol: a JSON config message, binary PCM16 chunks, then
// {"eof":1}. The server answers every chunk with a partial or a result.
package vosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt"
)

const (
	defaultSampleRate   = 16000
	defaultCloseTimeout = 3 * time.Second
)

var eofMessage = []byte(`{"eof":1}`)

type Option func(*Provider)

// WithCloseTimeout bounds how long Close waits for the final result after eof.
func WithCloseTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.closeTimeout = d
	}
}

// Provider implements stt.Provider against a Vosk server.
type Provider struct {
	url          string
	closeTimeout time.Duration
}

func New(url string, opts ...Option) (*Provider, error) {
	if url == "" {
		return nil, errors.New("vosk: url must not be empty")
	}
	p := &Provider{
		url:          url,
		closeTimeout: defaultCloseTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

type configMessage struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
		Words      int `json:"words"`
	} `json:"config"`
}

func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	conn, _, err := websocket.Dial(ctx, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("vosk: dial: %w", err)
	}

	var msg configMessage
	msg.Config.SampleRate = cfg.SampleRate
	if msg.Config.SampleRate == 0 {
		msg.Config.SampleRate = defaultSampleRate
	}
	if cfg.Words {
		msg.Config.Words = 1
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "config")
		return nil, fmt.Errorf("vosk: encode config: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		conn.Close(websocket.StatusInternalError, "config")
		return nil, fmt.Errorf("vosk: send config: %w", err)
	}

	s := &session{
		conn:         conn,
		partials:     make(chan stt.Transcript, 64),
		finals:       make(chan stt.Transcript, 64),
		audio:        make(chan []byte, 256),
		done:         make(chan struct{}),
		stop:         make(chan struct{}),
		readDone:     make(chan struct{}),
		writeDone:    make(chan struct{}),
		closeTimeout: p.closeTimeout,
	}
	go s.readLoop(ctx)
	go s.writeLoop(ctx)

	return s, nil
}

type session struct {
	conn     *websocket.Conn
	partials chan stt.Transcript
	finals   chan stt.Transcript
	audio    chan []byte

	// done stops accepting audio; stop abandons delivery of results.
	done      chan struct{}
	stop      chan struct{}
	readDone  chan struct{}
	writeDone chan struct{}
	once      sync.Once

	closeTimeout time.Duration
}

func (s *session) SendAudio(chunk []byte) error {
	select {
	case <-s.done:
		return stt.ErrSessionClosed
	default:
	}
	select {
	case s.audio <- chunk:
		return nil
	case <-s.done:
		return stt.ErrSessionClosed
	}
}

func (s *session) Partials() <-chan stt.Transcript { return s.partials }

func (s *session) Finals() <-chan stt.Transcript { return s.finals }

func (s *session) Close() error {
	s.once.Do(func() {
		close(s.done)
		<-s.writeDone

		select {
		case <-s.readDone:
		case <-time.After(s.closeTimeout):
		}
		close(s.stop)
		s.conn.Close(websocket.StatusNormalClosure, "stream closed")
		<-s.readDone
	})
	return nil
}

func (s *session) writeLoop(ctx context.Context) {
	defer close(s.writeDone)
	for {
		select {
		case chunk := <-s.audio:
			if err := s.conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
				return
			}
		case <-s.done:
			for {
				select {
				case chunk := <-s.audio:
					if err := s.conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
						return
					}
				default:
					_ = s.conn.Write(ctx, websocket.MessageText, eofMessage)
					return
				}
			}
		}
	}
}

func (s *session) readLoop(ctx context.Context) {
	defer close(s.readDone)
	defer close(s.partials)
	defer close(s.finals)

	for {
		_, msg, err := s.conn.Read(ctx)
		if err != nil {
			return
		}

		t, ok := parseResponse(msg)
		if !ok {
			continue
		}

		out := s.partials
		if t.IsFinal {
			out = s.finals
		}
		select {
		case out <- t:
		case <-s.stop:
			return
		}
	}
}

type voskWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Conf  float64 `json:"conf"`
}

type voskResponse struct {
	Partial *string    `json:"partial"`
	Text    *string    `json:"text"`
	Result  []voskWord `json:"result"`
}

// parseResponse maps a server message to a transcript. Messages with
// neither "partial" nor "text" are ignored.
func parseResponse(data []byte) (stt.Transcript, bool) {
	var resp voskResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return stt.Transcript{}, false
	}

	switch {
	case resp.Text != nil:
		words := make([]stt.WordDetail, 0, len(resp.Result))
		for _, w := range resp.Result {
			words = append(words, stt.WordDetail{
				Word:       w.Word,
				Start:      seconds(w.Start),
				End:        seconds(w.End),
				Confidence: w.Conf,
			})
		}
		return stt.Transcript{Text: *resp.Text, IsFinal: true, Words: words}, true
	case resp.Partial != nil:
		return stt.Transcript{Text: *resp.Partial}, true
	default:
		return stt.Transcript{}, false
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

var _ stt.Provider = (*Provider)(nil)
