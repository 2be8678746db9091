// Package eyecontact classifies a frame as a blink or as a gaze toward or
// away from the camera. Blinks are excluded from every counter.
package eyecontact

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/geometry"
	"github.com/saturnino-fabrica-de-software/poise/internal/rules"
	"github.com/saturnino-fabrica-de-software/poise/internal/session"
)

// Measurement is the per-frame eye reading.
type Measurement struct {
	EAR   float64
	Blink bool

	// Gaze fields are zero when Blink is set.
	LeftRatio     float64
	RightRatio    float64
	LeftVertical  float64
	RightVertical float64
	TowardCamera  bool
}

// Evaluate measures both eyes of lm. faceWidth must already be validated.
func Evaluate(lm domain.FaceLandmarks, faceWidth float64) (Measurement, error) {
	left, err := geometry.EyePoints(lm, geometry.LeftEyeContour)
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid eye landmark indices: %w", err)
	}
	right, err := geometry.EyePoints(lm, geometry.RightEyeContour)
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid eye landmark indices: %w", err)
	}

	leftEAR, err := geometry.EyeAspectRatio(left)
	if err != nil {
		return Measurement{}, fmt.Errorf("calculate EAR: %w", err)
	}
	rightEAR, err := geometry.EyeAspectRatio(right)
	if err != nil {
		return Measurement{}, fmt.Errorf("calculate EAR: %w", err)
	}

	m := Measurement{EAR: (leftEAR + rightEAR) / 2}
	if rules.IsBlink(m.EAR) {
		m.Blink = true
		return m, nil
	}

	if len(lm) <= geometry.RightIris {
		return Measurement{}, fmt.Errorf("estimate gaze: iris landmarks missing (%d points)", len(lm))
	}

	m.LeftRatio = gazeRatio(lm[geometry.LeftIris], lm[geometry.LeftEyeInner], lm[geometry.LeftEyeOuter], faceWidth)
	m.RightRatio = gazeRatio(lm[geometry.RightIris], lm[geometry.RightEyeInner], lm[geometry.RightEyeOuter], faceWidth)
	m.LeftVertical = verticalGaze(lm[geometry.LeftIris], lm[geometry.LeftEyeUpperLid], lm[geometry.LeftEyeLowerLid])
	m.RightVertical = verticalGaze(lm[geometry.RightIris], lm[geometry.RightEyeUpperLid], lm[geometry.RightEyeLowerLid])

	m.TowardCamera = inOpen(m.LeftRatio, rules.GazeHorizontalMin, rules.GazeHorizontalMax) &&
		inOpen(m.RightRatio, rules.GazeHorizontalMin, rules.GazeHorizontalMax) &&
		inOpen(m.LeftVertical, rules.GazeVerticalMin, rules.GazeVerticalMax) &&
		inOpen(m.RightVertical, rules.GazeVerticalMin, rules.GazeVerticalMax)

	return m, nil
}

// gazeRatio is d(iris,inner)/d(iris,outer) on face-width normalized 2D
// distances; 1.0 (centered) when the outer distance vanishes.
func gazeRatio(iris, inner, outer domain.Point, faceWidth float64) float64 {
	dInner := geometry.Distance2D(iris, inner) / faceWidth
	dOuter := geometry.Distance2D(iris, outer) / faceWidth
	if dOuter == 0 {
		return 1.0
	}
	return dInner / dOuter
}

// verticalGaze maps the iris height between the lids to [0,1], 0.5 centered.
func verticalGaze(iris, upper, lower domain.Point) float64 {
	height := upper.Y - lower.Y
	if height < 0 {
		height = -height
	}
	if height == 0 {
		return 0.5
	}
	center := (upper.Y + lower.Y) / 2
	return 0.5 - (iris.Y-center)/height
}

func inOpen(v, lo, hi float64) bool {
	return v > lo && v < hi
}

// Record counts a non-blink frame. The caller holds the session lock.
func Record(s *session.State, towardCamera bool) {
	if towardCamera {
		s.EyeContactFrames++
	}
	s.TotalProcessedFrames++
}

// Score is the eye-contact percentage, 0 when no frame has been counted.
// The composite path treats the same case as null instead.
func Score(eyeContactFrames, totalProcessedFrames int) float64 {
	if totalProcessedFrames == 0 {
		return 0
	}
	return float64(eyeContactFrames) / float64(totalProcessedFrames) * 100
}
