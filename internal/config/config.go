package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port           int      `envconfig:"PORT" default:"3000"`
	Environment    string   `envconfig:"ENV" default:"development"`
	CORSOrigins    []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:5174,http://127.0.0.1:5173,http://127.0.0.1:5174"`
	MaxFrameBytes  int      `envconfig:"MAX_FRAME_BYTES" default:"5242880"`
	MaxFramePixels int      `envconfig:"MAX_FRAME_PIXELS" default:"8294400"`

	// Frame uploads per session per minute; 0 disables the limit.
	FrameRateLimit int `envconfig:"FRAME_RATE_LIMIT" default:"1800"`

	// Database. Empty disables report persistence.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Landmark detectors
	DetectorProvider string        `envconfig:"DETECTOR_PROVIDER" default:"mediapipe"`
	MediaPipeURL     string        `envconfig:"MEDIAPIPE_URL" default:"http://localhost:5001"`
	DetectorSocket   string        `envconfig:"DETECTOR_SOCKET" default:"/tmp/poise-detector.sock"`
	DetectorTimeout  time.Duration `envconfig:"DETECTOR_TIMEOUT" default:"5s"`

	// Speech-to-text
	STTProvider   string `envconfig:"STT_PROVIDER" default:"vosk"`
	VoskURL       string `envconfig:"VOSK_URL" default:"ws://localhost:2700"`
	STTSampleRate int    `envconfig:"STT_SAMPLE_RATE" default:"16000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.STTSampleRate <= 0 {
		return nil, fmt.Errorf("load config: STT_SAMPLE_RATE must be positive, got %d", cfg.STTSampleRate)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PersistenceEnabled reports whether finalized reports are written to Postgres.
func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseURL != ""
}
