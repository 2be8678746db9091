package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/eyecontact"
	"github.com/saturnino-fabrica-de-software/poise/internal/geometry"
)

func frame() *domain.Frame {
	return domain.NewFrame(2, 2, 3)
}

func TestProvider_DetectFaces(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		frame     *domain.Frame
		wantFaces int
		wantErr   bool
	}{
		{
			name:      "valid frame",
			frame:     frame(),
			wantFaces: 1,
			wantErr:   false,
		},
		{
			name:      "empty frame",
			frame:     &domain.Frame{},
			wantFaces: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewStatic()
			faces, err := p.DetectFaces(ctx, tt.frame)
			if (err != nil) != tt.wantErr {
				t.Errorf("DetectFaces() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if len(faces) != tt.wantFaces {
				t.Errorf("DetectFaces() got %d faces, want %d", len(faces), tt.wantFaces)
			}
		})
	}
}

func TestProvider_ScriptAdvancesAndRepeatsLastStep(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("sidecar down")
	p := New(
		Crowd(2, Face().Build()),
		Step{FaceErr: boom},
		SingleFace(Face().Build(), nil),
	)

	faces, err := p.DetectFaces(ctx, frame())
	require.NoError(t, err)
	assert.Len(t, faces, 2)
	pose, err := p.DetectPose(ctx, frame())
	require.NoError(t, err)
	assert.Len(t, pose, domain.PosePoints)

	_, err = p.DetectFaces(ctx, frame())
	assert.ErrorIs(t, err, boom)

	for i := 0; i < 3; i++ {
		faces, err = p.DetectFaces(ctx, frame())
		require.NoError(t, err)
		assert.Len(t, faces, 1)
		pose, err = p.DetectPose(ctx, frame())
		require.NoError(t, err)
		assert.Nil(t, pose)
	}
	assert.Equal(t, 5, p.Calls())
}

func TestProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic().DetectFaces(ctx, frame())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFaceBuilder_Geometry(t *testing.T) {
	tests := []struct {
		name         string
		face         domain.FaceLandmarks
		wantEAR      float64
		wantBlink    bool
		towardCamera bool
	}{
		{"default face", Face().Build(), 0.3, false, true},
		{"closed eyes", Face().EAR(0.18).Build(), 0.18, true, false},
		{"ear on the blink threshold", Face().EAR(0.21).Build(), 0.21, false, true},
		{"looking away", Face().LookAway().Build(), 0.3, false, false},
		{"looking down", Face().Iris(0, 0.009).Build(), 0.3, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := geometry.FaceWidth(tt.face)
			require.NoError(t, err)
			assert.InDelta(t, DefaultWidth, w, 1e-12)

			m, err := eyecontact.Evaluate(tt.face, w)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantEAR, m.EAR, 1e-9)
			assert.GreaterOrEqual(t, m.EAR, tt.wantEAR)
			assert.Equal(t, tt.wantBlink, m.Blink)
			assert.Equal(t, tt.towardCamera, m.TowardCamera)
		})
	}
}
