package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionSummary is the read-only view of a live session.
type SessionSummary struct {
	SessionID            string  `json:"session_id"`
	DurationSeconds      float64 `json:"duration_seconds"`
	TotalFramesProcessed int     `json:"total_frames_processed"`
	EyeContactFrames     int     `json:"eye_contact_frames"`
	IsCancelled          bool    `json:"is_cancelled"`
	CancellationReason   *string `json:"cancellation_reason"`
}

// Pass status values of a finalized report.
const (
	PassStatusPass             = "pass"
	PassStatusFail             = "fail"
	PassStatusInsufficientData = "insufficient_data"
)

// PassThreshold is the average final score a session needs to pass.
const PassThreshold = 60.0

// SessionReport is the end-of-session aggregate over every scored frame.
type SessionReport struct {
	ID             uuid.UUID `json:"id"`
	SessionID      string    `json:"session_id"`
	TotalFrames    int       `json:"total_frames"`
	AnalyzedFrames int       `json:"analyzed_frames"`
	Scores         Scores    `json:"non_verbal_scores"`
	PassStatus     string    `json:"pass_status"`
	PassThreshold  float64   `json:"pass_threshold"`
	CreatedAt      time.Time `json:"created_at"`
}
