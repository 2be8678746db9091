package mediapipe

import "github.com/saturnino-fabrica-de-software/poise/internal/domain"

// FaceMeshRequest for POST /face-mesh. Image is the raw interleaved RGB
// buffer, base64 encoded.
type FaceMeshRequest struct {
	Image           string `json:"image"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	MaxFaces        int    `json:"max_faces"`
	RefineLandmarks bool   `json:"refine_landmarks"`
}

// FaceMeshResponse from POST /face-mesh: one landmark list per face.
type FaceMeshResponse struct {
	Faces [][]domain.Point `json:"faces"`
}

// PoseRequest for POST /pose
type PoseRequest struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PoseResponse from POST /pose. Landmarks is null when no body was found.
type PoseResponse struct {
	Landmarks []domain.Point `json:"landmarks"`
}

// HealthResponse from GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
