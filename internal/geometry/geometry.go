// Package geometry implements the landmark measurements used by the
// analysis stages. All distances are in normalized image coordinates and
// every movement metric is divided by the face width so it does not depend
// on how far the candidate sits from the camera.
package geometry

import (
	"fmt"
	"math"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/rules"
)

func Distance3D(p, q domain.Point) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func Distance2D(p, q domain.Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// EyeAspectRatio computes (|p1-p5| + |p2-p4|) / (2|p0-p3|). It returns 0
// when the horizontal span is degenerate.
func EyeAspectRatio(eye []domain.Point) (float64, error) {
	if len(eye) != 6 {
		return 0, fmt.Errorf("expected 6 eye landmarks, got %d", len(eye))
	}

	v1 := Distance3D(eye[1], eye[5])
	v2 := Distance3D(eye[2], eye[4])
	h := Distance3D(eye[0], eye[3])
	if h == 0 {
		return 0, nil
	}
	return (v1 + v2) / (2 * h), nil
}

// EyePoints gathers a contour from the mesh.
func EyePoints(lm domain.FaceLandmarks, contour [6]int) ([]domain.Point, error) {
	out := make([]domain.Point, 0, len(contour))
	for _, idx := range contour {
		if idx >= len(lm) {
			return nil, fmt.Errorf("landmark %d out of range (%d points)", idx, len(lm))
		}
		out = append(out, lm[idx])
	}
	return out, nil
}

// FaceWidth is the 3D distance between the two lateral face landmarks.
func FaceWidth(lm domain.FaceLandmarks) (float64, error) {
	if len(lm) <= max(LeftFaceEdge, RightFaceEdge) {
		return 0, fmt.Errorf("face width needs %d landmarks, got %d", RightFaceEdge+1, len(lm))
	}
	return Distance3D(lm[LeftFaceEdge], lm[RightFaceEdge]), nil
}

// Normalize divides raw by faceWidth after validating the width.
func Normalize(raw, faceWidth float64, metric string) (float64, error) {
	if err := rules.ValidateNormalizationInputs(faceWidth, metric); err != nil {
		return 0, err
	}
	return raw / faceWidth, nil
}

// LandmarkSetVariance is the mean 3D displacement of the engagement points
// between two meshes, normalized by face width.
func LandmarkSetVariance(curr, prev domain.FaceLandmarks, faceWidth float64) (float64, error) {
	var sum float64
	for _, idx := range EngagementIndices {
		if idx >= len(curr) || idx >= len(prev) {
			return 0, fmt.Errorf("landmark %d out of range", idx)
		}
		sum += Distance3D(curr[idx], prev[idx])
	}
	return Normalize(sum/float64(len(EngagementIndices)), faceWidth, "facial_engagement")
}

// NoseDisplacement is the 3D movement of the nose tip normalized by face
// width. prev may hold two or three coordinates; a missing z is taken as 0.
func NoseDisplacement(curr domain.Point, prev []float64, faceWidth float64) (float64, error) {
	var p domain.Point
	switch len(prev) {
	case 2:
		p = domain.Point{X: prev[0], Y: prev[1]}
	case 3:
		p = domain.Point{X: prev[0], Y: prev[1], Z: prev[2]}
	default:
		return 0, fmt.Errorf("previous nose position must have 2 or 3 coordinates, got %d", len(prev))
	}
	return Normalize(Distance3D(curr, p), faceWidth, "stability")
}

// Mean of values; callers guard the empty case.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
