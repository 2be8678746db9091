package ws

import "time"

type EventType string

const (
	EventFrameAnalyzed    EventType = "frame.analyzed"
	EventSessionCancelled EventType = "session.cancelled"
	EventReportFinalized  EventType = "report.finalized"
	EventSpeechFinal      EventType = "speech.final"
)

// Event is what monitors of a session receive.
type Event struct {
	SessionID string      `json:"session_id"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
