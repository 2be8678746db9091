package vosk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt"
)

// fakeServer answers every audio chunk with a partial and the eof with a
// final result carrying word timings.
type fakeServer struct {
	mu     sync.Mutex
	config configMessage
	chunks int
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	ctx := r.Context()

	_, msg, err := conn.Read(ctx)
	if err != nil {
		return
	}
	f.mu.Lock()
	_ = json.Unmarshal(msg, &f.config)
	f.mu.Unlock()

	for {
		typ, msg, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ == websocket.MessageText && strings.Contains(string(msg), "eof") {
			_ = conn.Write(ctx, websocket.MessageText, []byte(
				`{"result":[{"conf":1,"start":0.5,"end":0.9,"word":"hello"},{"conf":0.8,"start":1.0,"end":1.4,"word":"there"}],"text":"hello there"}`))
			return
		}
		f.mu.Lock()
		f.chunks++
		f.mu.Unlock()
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"partial":"hello"}`))
	}
}

func TestProvider_StreamRoundTrip(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handle))
	defer srv.Close()

	p, err := New("ws"+strings.TrimPrefix(srv.URL, "http"), WithCloseTimeout(2*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := p.StartStream(ctx, stt.StreamConfig{SampleRate: 16000, Words: true})
	require.NoError(t, err)

	require.NoError(t, h.SendAudio(make([]byte, 3200)))
	require.NoError(t, h.SendAudio(make([]byte, 3200)))

	partial := <-h.Partials()
	assert.Equal(t, "hello", partial.Text)
	assert.False(t, partial.IsFinal)

	var finals []stt.Transcript
	done := make(chan struct{})
	go func() {
		defer close(done)
		for f := range h.Finals() {
			finals = append(finals, f)
		}
	}()
	go func() {
		for range h.Partials() {
		}
	}()

	require.NoError(t, h.Close())
	<-done

	require.Len(t, finals, 1)
	assert.Equal(t, "hello there", finals[0].Text)
	require.Len(t, finals[0].Words, 2)
	assert.Equal(t, 500*time.Millisecond, finals[0].Words[0].Start)
	assert.Equal(t, "there", finals[0].Words[1].Word)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 16000, fake.config.Config.SampleRate)
	assert.Equal(t, 1, fake.config.Config.Words)
	assert.Equal(t, 2, fake.chunks)

	assert.ErrorIs(t, h.SendAudio([]byte{0, 0}), stt.ErrSessionClosed)
	assert.NoError(t, h.Close(), "second Close is a no-op")
}

func TestProvider_DialFailure(t *testing.T) {
	p, err := New("ws://127.0.0.1:1")
	require.NoError(t, err)

	_, err = p.StartStream(context.Background(), stt.StreamConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vosk: dial")
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantFinal bool
		wantText  string
		wantWords int
	}{
		{"partial", `{"partial":"good mor"}`, true, false, "good mor", 0},
		{"empty partial", `{"partial":""}`, true, false, "", 0},
		{"final", `{"result":[{"conf":1,"start":0,"end":0.3,"word":"yes"}],"text":"yes"}`, true, true, "yes", 1},
		{"empty final", `{"text":""}`, true, true, "", 0},
		{"unknown", `{"foo":1}`, false, false, "", 0},
		{"garbage", `not json`, false, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseResponse([]byte(tt.input))
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantFinal, got.IsFinal)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Len(t, got.Words, tt.wantWords)
		})
	}
}
