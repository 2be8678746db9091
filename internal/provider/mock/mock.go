package mock

import (
	"context"
	"sync"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider"
)

// Step descreve o que o detector devolve para um frame.
type Step struct {
	Faces   []domain.FaceLandmarks
	Pose    domain.PoseLandmarks
	FaceErr error
	PoseErr error
}

// SingleFace is a step with one face and the given pose.
func SingleFace(face domain.FaceLandmarks, pose domain.PoseLandmarks) Step {
	return Step{Faces: []domain.FaceLandmarks{face}, Pose: pose}
}

// Crowd is a step with n copies of face.
func Crowd(n int, face domain.FaceLandmarks) Step {
	faces := make([]domain.FaceLandmarks, n)
	for i := range faces {
		faces[i] = face
	}
	return Step{Faces: faces, Pose: GoodPose()}
}

// Provider implementa provider.Detector para testes e desenvolvimento.
// Each DetectFaces call advances to the next scripted step; DetectPose
// answers from the current one. The last step repeats once the script runs out.
type Provider struct {
	mu      sync.Mutex
	steps   []Step
	current Step
	calls   int
}

// New creates a scripted provider.
func New(steps ...Step) *Provider {
	return &Provider{steps: steps}
}

// NewStatic always sees one centered, attentive candidate.
func NewStatic() *Provider {
	return New(SingleFace(Face().Build(), GoodPose()))
}

// Push appends steps to the script.
func (p *Provider) Push(steps ...Step) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, steps...)
}

// Calls returns how many frames reached face detection.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// DetectFaces simula detecção de malha facial.
func (p *Provider) DetectFaces(ctx context.Context, rgb *domain.Frame) ([]domain.FaceLandmarks, error) {
	if rgb == nil || len(rgb.Data) == 0 {
		return nil, domain.ErrInvalidImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.steps) > 0 {
		p.current = p.steps[0]
		if len(p.steps) > 1 {
			p.steps = p.steps[1:]
		}
	}
	p.calls++
	return p.current.Faces, p.current.FaceErr
}

// DetectPose simula estimativa de pose.
func (p *Provider) DetectPose(ctx context.Context, rgb *domain.Frame) (domain.PoseLandmarks, error) {
	if rgb == nil || len(rgb.Data) == 0 {
		return nil, domain.ErrInvalidImage
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Pose, p.current.PoseErr
}

// HealthCheck always succeeds.
func (p *Provider) HealthCheck(ctx context.Context) error {
	return nil
}

var (
	_ provider.Detector      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)
