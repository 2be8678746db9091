package domain

import (
	"time"

	"github.com/google/uuid"
)

// Word is one recognized token with its timing in seconds from stream start.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Conf  float64 `json:"conf"`
}

// SpeechAnswer is the submitted transcript of one interview question.
type SpeechAnswer struct {
	SessionID       string `json:"session_id"`
	QuestionID      string `json:"question_id"`
	RawTranscript   string `json:"raw_transcript"`
	CleanTranscript string `json:"clean_transcript"`
	WordCount       int    `json:"word_count"`
}

// SpeechMetrics are the delivery measurements over a whole session's audio.
type SpeechMetrics struct {
	WordCount       int     `json:"word_count"`
	DurationSeconds float64 `json:"duration"`
	AvgWPM          float64 `json:"avg_wpm"`
	FillerCount     int     `json:"filler_count"`
	FillerRate      float64 `json:"filler_rate"`
	PauseCount      int     `json:"pause_count"`
	PauseRatio      float64 `json:"pause_ratio"`
	Energy          float64 `json:"energy"`
	PitchMean       float64 `json:"pitch_mean"`
	PitchVariation  float64 `json:"pitch_variation"`
}

// SpeechReport is the finalized speech analysis of a session.
type SpeechReport struct {
	ID              uuid.UUID     `json:"id"`
	SessionID       string        `json:"session_id"`
	Metrics         SpeechMetrics `json:"metrics"`
	ConfidenceScore float64       `json:"confidence_score"`
	CreatedAt       time.Time     `json:"created_at"`
}
