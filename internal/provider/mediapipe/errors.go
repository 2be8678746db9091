package mediapipe

import "errors"

var (
	ErrSidecarUnavailable = errors.New("mediapipe sidecar unavailable")
	ErrInvalidResponse    = errors.New("invalid response from mediapipe sidecar")
	ErrUnhealthy          = errors.New("mediapipe sidecar reports unhealthy")
)
