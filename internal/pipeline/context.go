package pipeline

import (
	"context"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/eyecontact"
	"github.com/saturnino-fabrica-de-software/poise/internal/session"
)

// Context carries one frame through the stages. It is created per frame
// and discarded afterwards; only Session outlives it.
type Context struct {
	Ctx     context.Context
	Frame   *domain.Frame
	Session *session.State

	RGB       *domain.Frame
	Faces     []domain.FaceLandmarks
	FaceCount int
	Landmarks domain.FaceLandmarks
	FaceWidth float64
	Pose      domain.PoseLandmarks

	Eye        *eyecontact.Measurement
	Engagement *float64
	Posture    *float64
	Stability  *float64
}

// NewContext binds a frame to its session. The caller holds the session lock
// until the pipeline returns.
func NewContext(ctx context.Context, frame *domain.Frame, s *session.State) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{Ctx: ctx, Frame: frame, Session: s}
}
