// Package mediapipe talks to a MediaPipe landmark sidecar over HTTP. The
// sidecar runs Face Mesh with refined iris landmarks and Pose on the raw RGB
// frames it receives.
package mediapipe

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider"
)

const providerName = "mediapipe"

// Provider implements provider.Detector using the sidecar
type Provider struct {
	client   *Client
	maxFaces int
	metrics  *observe.Metrics
}

func NewProvider(config Config, metrics *observe.Metrics) *Provider {
	return &Provider{
		client:   NewClient(config),
		maxFaces: config.MaxFaces,
		metrics:  metrics,
	}
}

func (p *Provider) record(ctx context.Context, kind string, err error) {
	if p.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordDetectorRequest(ctx, providerName, kind, status)
}

func encode(rgb *domain.Frame) (string, error) {
	if rgb == nil || len(rgb.Data) == 0 || rgb.Channels != 3 {
		return "", domain.ErrInvalidImage
	}
	return base64.StdEncoding.EncodeToString(rgb.Data), nil
}

// DetectFaces returns one refined mesh per face found
func (p *Provider) DetectFaces(ctx context.Context, rgb *domain.Frame) ([]domain.FaceLandmarks, error) {
	img, err := encode(rgb)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.FaceMesh(ctx, FaceMeshRequest{
		Image:           img,
		Width:           rgb.Cols,
		Height:          rgb.Rows,
		MaxFaces:        p.maxFaces,
		RefineLandmarks: true,
	})
	p.record(ctx, "face_mesh", err)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]domain.FaceLandmarks, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, domain.FaceLandmarks(f))
	}
	return faces, nil
}

// DetectPose returns the body landmarks, or nil when nobody is visible
func (p *Provider) DetectPose(ctx context.Context, rgb *domain.Frame) (domain.PoseLandmarks, error) {
	img, err := encode(rgb)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Pose(ctx, PoseRequest{Image: img, Width: rgb.Cols, Height: rgb.Rows})
	p.record(ctx, "pose", err)
	if err != nil {
		return nil, fmt.Errorf("detect pose: %w", err)
	}
	if len(resp.Landmarks) == 0 {
		return nil, nil
	}
	return domain.PoseLandmarks(resp.Landmarks), nil
}

func (p *Provider) HealthCheck(ctx context.Context) error {
	resp, err := p.client.Health(ctx)
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, resp.Status)
	}
	return nil
}

var (
	_ provider.Detector      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)
