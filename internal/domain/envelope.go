package domain

// SessionStatus discriminates the per-frame envelope.
type SessionStatus string

const (
	StatusActive           SessionStatus = "active"
	StatusInsufficientData SessionStatus = "insufficient_data"
	StatusCancelled        SessionStatus = "cancelled"
	StatusFrameSkipped     SessionStatus = "frame_skipped"
)

// Fixed insight texts.
const (
	InsightInsufficientData  = "Insufficient data to compute metrics"
	InsightSessionCancelled  = "Session cancelled due to integrity violation"
	InsightEyeContact        = "Eye contact was inconsistent"
	InsightPosture           = "Posture needs improvement"
	InsightStability         = "Frequent movement detected; try to remain still"
	InsightFacialEngagement  = "Facial engagement appears low"
	ReasonMultipleFaces      = "multiple_faces_detected"
	ReasonBlinkDetected      = "blink_detected"
	ReasonFrameDecodeFailure = "Failed to decode frame"
)

// Scores holds the composite metrics, each in [0,100] or null.
type Scores struct {
	EyeContact       *float64 `json:"eye_contact"`
	FacialExpression *float64 `json:"facial_expression"`
	Posture          *float64 `json:"posture"`
	Stability        *float64 `json:"stability"`
	Final            *float64 `json:"final_non_verbal_score"`
}

// Envelope is the per-frame output. Only the reason field that matches
// Status is set; non-active envelopes carry all-null scores.
type Envelope struct {
	Status             SessionStatus `json:"session_status"`
	Scores             Scores        `json:"non_verbal_scores"`
	Insights           []string      `json:"insights"`
	Reason             string        `json:"reason,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	SkipReason         string        `json:"skip_reason,omitempty"`
}

func NewActiveEnvelope(scores Scores, insights []string) Envelope {
	if insights == nil {
		insights = []string{}
	}
	return Envelope{Status: StatusActive, Scores: scores, Insights: insights}
}

func NewInsufficientDataEnvelope(reason string) Envelope {
	return Envelope{
		Status:   StatusInsufficientData,
		Insights: []string{InsightInsufficientData},
		Reason:   reason,
	}
}

func NewCancelledEnvelope(reason string) Envelope {
	return Envelope{
		Status:             StatusCancelled,
		Insights:           []string{InsightSessionCancelled},
		CancellationReason: reason,
	}
}

func NewFrameSkippedEnvelope(reason string) Envelope {
	return Envelope{
		Status:     StatusFrameSkipped,
		Insights:   []string{},
		SkipReason: reason,
	}
}

// Float returns a pointer to v, for building Scores literals.
func Float(v float64) *float64 {
	return &v
}
