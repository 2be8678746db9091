package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

// FaceMeshDetector define a interface para detectores de malha facial.
// Implementations receive an RGB frame and return one refined mesh
// (468 face + 10 iris points) per detected face; an empty result means no
// face was found.
type FaceMeshDetector interface {
	DetectFaces(ctx context.Context, rgb *domain.Frame) ([]domain.FaceLandmarks, error)
}

// PoseDetector estimates a body pose on an RGB frame. A nil pose with a nil
// error means no body was found.
type PoseDetector interface {
	DetectPose(ctx context.Context, rgb *domain.Frame) (domain.PoseLandmarks, error)
}

// Detector bundles both collaborators; sidecar clients implement it.
type Detector interface {
	FaceMeshDetector
	PoseDetector
}

// HealthChecker is implemented by detectors backed by a remote process.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
