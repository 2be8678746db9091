// Package backend builds the external collaborators selected by
// configuration: the landmark detector and the speech recognizer.
package backend

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/poise/internal/config"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/mediapipe"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/socket"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt"
	sttmock "github.com/saturnino-fabrica-de-software/poise/internal/provider/stt/mock"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/stt/vosk"
)

// DetectorType defines supported landmark detector backends
type DetectorType string

const (
	// DetectorMediaPipe is the HTTP MediaPipe sidecar
	DetectorMediaPipe DetectorType = "mediapipe"
	// DetectorSocket is a local worker on a unix socket
	DetectorSocket DetectorType = "socket"
	// DetectorMock always sees one attentive candidate (dev only)
	DetectorMock DetectorType = "mock"
)

// RecognizerType defines supported speech-to-text backends
type RecognizerType string

const (
	RecognizerVosk RecognizerType = "vosk"
	RecognizerMock RecognizerType = "mock"
	RecognizerNone RecognizerType = "none"
)

// Detector is a landmark detector that can report its health.
type Detector interface {
	provider.Detector
	provider.HealthChecker
}

// NewDetector creates the detector named by DETECTOR_PROVIDER.
//
// Environment variables:
//   - DETECTOR_PROVIDER: "mediapipe", "socket" or "mock" (default: "mediapipe")
//   - MEDIAPIPE_URL: sidecar URL (default: "http://localhost:5001")
//   - DETECTOR_SOCKET: worker socket path (default: "/tmp/poise-detector.sock")
//   - DETECTOR_TIMEOUT: per-request timeout (default: 5s)
func NewDetector(cfg *config.Config, metrics *observe.Metrics) (Detector, error) {
	switch DetectorType(cfg.DetectorProvider) {
	case DetectorMediaPipe, "":
		mpConfig := mediapipe.DefaultConfig()
		if cfg.MediaPipeURL != "" {
			mpConfig.BaseURL = cfg.MediaPipeURL
		}
		if cfg.DetectorTimeout > 0 {
			mpConfig.Timeout = cfg.DetectorTimeout
		}
		return mediapipe.NewProvider(mpConfig, metrics), nil

	case DetectorSocket:
		return socket.NewClient(cfg.DetectorSocket, cfg.DetectorTimeout, metrics), nil

	case DetectorMock:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("detector provider %q is not allowed in production", cfg.DetectorProvider)
		}
		return mock.NewStatic(), nil

	default:
		return nil, fmt.Errorf("unknown detector provider: %s (supported: %s, %s, %s)",
			cfg.DetectorProvider, DetectorMediaPipe, DetectorSocket, DetectorMock)
	}
}

// NewRecognizer creates the speech recognizer named by STT_PROVIDER. "none"
// disables the voice endpoint and yields a nil provider.
func NewRecognizer(cfg *config.Config) (stt.Provider, error) {
	switch RecognizerType(cfg.STTProvider) {
	case RecognizerVosk, "":
		p, err := vosk.New(cfg.VoskURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case RecognizerMock:
		return &sttmock.Provider{}, nil
	case RecognizerNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown stt provider: %s (supported: %s, %s, %s)",
			cfg.STTProvider, RecognizerVosk, RecognizerMock, RecognizerNone)
	}
}
