package backend

import (
	"testing"
	"time"

	"github.com/saturnino-fabrica-de-software/poise/internal/config"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/mediapipe"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/socket"
	sttmock "github.com/saturnino-fabrica-de-software/poise/internal/provider/stt/mock"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt/vosk"
)

func TestNewDetector(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantType string
		wantErr  bool
	}{
		{
			name:     "explicit mediapipe",
			cfg:      config.Config{DetectorProvider: "mediapipe", MediaPipeURL: "http://sidecar:5001", DetectorTimeout: time.Second},
			wantType: "mediapipe",
		},
		{
			name:     "empty defaults to mediapipe",
			cfg:      config.Config{},
			wantType: "mediapipe",
		},
		{
			name:     "socket worker",
			cfg:      config.Config{DetectorProvider: "socket", DetectorSocket: "/tmp/x.sock", DetectorTimeout: time.Second},
			wantType: "socket",
		},
		{
			name:     "mock in development",
			cfg:      config.Config{DetectorProvider: "mock", Environment: "development"},
			wantType: "mock",
		},
		{
			name:    "mock refused in production",
			cfg:     config.Config{DetectorProvider: "mock", Environment: "production"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{DetectorProvider: "opencv"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDetector(&tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewDetector() expected error, got %T", d)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDetector() error = %v", err)
			}

			var ok bool
			switch tt.wantType {
			case "mediapipe":
				_, ok = d.(*mediapipe.Provider)
			case "socket":
				_, ok = d.(*socket.Client)
			case "mock":
				_, ok = d.(*mock.Provider)
			}
			if !ok {
				t.Errorf("NewDetector() returned type %T, want %s", d, tt.wantType)
			}
		})
	}
}

func TestNewRecognizer(t *testing.T) {
	r, err := NewRecognizer(&config.Config{STTProvider: "vosk", VoskURL: "ws://localhost:2700"})
	if err != nil {
		t.Fatalf("NewRecognizer(vosk) error = %v", err)
	}
	if _, ok := r.(*vosk.Provider); !ok {
		t.Errorf("NewRecognizer(vosk) returned %T", r)
	}

	r, err = NewRecognizer(&config.Config{STTProvider: "mock"})
	if err != nil {
		t.Fatalf("NewRecognizer(mock) error = %v", err)
	}
	if _, ok := r.(*sttmock.Provider); !ok {
		t.Errorf("NewRecognizer(mock) returned %T", r)
	}

	r, err = NewRecognizer(&config.Config{STTProvider: "none"})
	if err != nil || r != nil {
		t.Errorf("NewRecognizer(none) = %v, %v; want nil, nil", r, err)
	}

	if _, err := NewRecognizer(&config.Config{STTProvider: "whisper"}); err == nil {
		t.Error("NewRecognizer(whisper) expected error")
	}

	if _, err := NewRecognizer(&config.Config{STTProvider: "vosk"}); err == nil {
		t.Error("NewRecognizer(vosk) without URL expected error")
	}
}
