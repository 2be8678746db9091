// Package rules holds every threshold the analysis pipeline compares against
// and the predicates built on them. No other package hardcodes a threshold.
package rules

import (
	"errors"
	"fmt"
	"math"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

const (
	// BlinkEARThreshold: eye aspect ratio strictly below this is a blink.
	BlinkEARThreshold = 0.21

	// MultiFaceThreshold is the number of consecutive multi-face frames
	// that cancels a session.
	MultiFaceThreshold = 15

	// Gaze windows are open intervals.
	GazeHorizontalMin = 0.6
	GazeHorizontalMax = 1.6
	GazeVerticalMin   = 0.2
	GazeVerticalMax   = 0.8

	PostureAlignmentMax = 0.25
	PostureTiltMax      = 0.15

	// PostureGoodScore and PostureBadScore are the per-frame posture values.
	PostureGoodScore = 100.0
	PostureBadScore  = 0.0

	EngagementScale = 5000.0
	StabilityScale  = 10.0

	InsightThreshold           = 60.0
	EngagementInsightThreshold = 30.0

	MinScore = 0.0
	MaxScore = 100.0

	// Composite weights.
	WeightEyeContact = 0.35
	WeightEngagement = 0.25
	WeightPosture    = 0.25
	WeightStability  = 0.15
)

// ErrInvalidFaceWidth is returned when a width is outside (0, 1).
var ErrInvalidFaceWidth = errors.New("invalid face width")

// IsBlink reports whether ear indicates closed eyes.
func IsBlink(ear float64) bool {
	return ear < BlinkEARThreshold
}

// IsMultiFaceViolation reports whether the consecutive multi-face count has
// reached threshold while the current frame still shows more than one face.
func IsMultiFaceViolation(faceCount, consecutive, threshold int) bool {
	return faceCount > 1 && consecutive >= threshold
}

// IsValidLandmark reports whether p is usable. A landmark carries x and y by
// construction, so only nil and non-finite coordinates are rejected.
func IsValidLandmark(p *domain.Point) bool {
	if p == nil {
		return false
	}
	return isFinite(p.X) && isFinite(p.Y)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsValidFaceWidth reports whether w is in the open interval (0, 1).
func IsValidFaceWidth(w float64) bool {
	return w > 0 && w < 1
}

// ClampScore bounds v to [MinScore, MaxScore].
func ClampScore(v float64) float64 {
	return Clamp(v, MinScore, MaxScore)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// ValidateNormalizationInputs fails before any division by an invalid width.
func ValidateNormalizationInputs(faceWidth float64, metric string) error {
	if !IsValidFaceWidth(faceWidth) {
		return fmt.Errorf("%w for %s: %v", ErrInvalidFaceWidth, metric, faceWidth)
	}
	return nil
}
