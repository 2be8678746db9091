package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/rules"
)

func mesh(n int) domain.FaceLandmarks {
	lm := make(domain.FaceLandmarks, n)
	for i := range lm {
		lm[i] = domain.Point{X: 0.5, Y: 0.5}
	}
	return lm
}

func TestDistance3D(t *testing.T) {
	assert.InDelta(t, 5.0, Distance3D(domain.Point{}, domain.Point{X: 3, Y: 4}), 1e-12)
	assert.InDelta(t, 3.0, Distance3D(domain.Point{X: 1, Y: 2, Z: 2}, domain.Point{X: 1, Y: 2, Z: 5}), 1e-12)
	assert.InDelta(t, 0.0, Distance2D(domain.Point{Z: 1}, domain.Point{Z: 9}), 1e-12)
}

func TestEyeAspectRatio(t *testing.T) {
	tests := []struct {
		name    string
		eye     []domain.Point
		want    float64
		wantErr bool
	}{
		{
			name: "open eye",
			eye: []domain.Point{
				{X: 0}, {X: 0.02, Y: -0.009}, {X: 0.04, Y: -0.009},
				{X: 0.06}, {X: 0.04, Y: 0.009}, {X: 0.02, Y: 0.009},
			},
			want: 0.3,
		},
		{
			name: "closed eye",
			eye: []domain.Point{
				{X: 0}, {X: 0.02, Y: -0.0054}, {X: 0.04, Y: -0.0054},
				{X: 0.06}, {X: 0.04, Y: 0.0054}, {X: 0.02, Y: 0.0054},
			},
			want: 0.18,
		},
		{
			name: "degenerate horizontal span",
			eye:  make([]domain.Point, 6),
			want: 0,
		},
		{
			name:    "wrong point count",
			eye:     make([]domain.Point, 5),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EyeAspectRatio(tt.eye)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFaceWidth(t *testing.T) {
	lm := mesh(domain.RefinedMeshPoints)
	lm[LeftFaceEdge] = domain.Point{X: 0.4, Y: 0.5}
	lm[RightFaceEdge] = domain.Point{X: 0.65, Y: 0.5}

	w, err := FaceWidth(lm)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, w, 1e-12)

	_, err = FaceWidth(mesh(100))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	v, err := Normalize(0.01, 0.25, "stability")
	require.NoError(t, err)
	assert.InDelta(t, 0.04, v, 1e-12)

	for _, w := range []float64{0, -1, 1, 2} {
		_, err := Normalize(0.01, w, "stability")
		assert.ErrorIs(t, err, rules.ErrInvalidFaceWidth, "width %v", w)
	}
}

func TestLandmarkSetVariance(t *testing.T) {
	prev := mesh(domain.RefinedMeshPoints)
	curr := mesh(domain.RefinedMeshPoints)

	v, err := LandmarkSetVariance(curr, prev, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	// Move only the chin by 0.009: mean displacement 0.001, normalized 0.004.
	curr[152] = domain.Point{X: 0.5, Y: 0.509}
	v, err = LandmarkSetVariance(curr, prev, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.004, v, 1e-9)

	_, err = LandmarkSetVariance(curr, prev, 0)
	assert.ErrorIs(t, err, rules.ErrInvalidFaceWidth)
}

func TestNoseDisplacement(t *testing.T) {
	curr := domain.Point{X: 0.51, Y: 0.5}

	tests := []struct {
		name    string
		prev    []float64
		want    float64
		wantErr bool
	}{
		{"three coordinates", []float64{0.5, 0.5, 0}, 0.04, false},
		{"two coordinates", []float64{0.5, 0.5}, 0.04, false},
		{"one coordinate", []float64{0.5}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NoseDisplacement(curr, tt.prev, 0.25)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNoseDisplacement_MissingZIsZero(t *testing.T) {
	got, err := NoseDisplacement(domain.Point{X: 0.5, Y: 0.5, Z: 0.03}, []float64{0.5, 0.5}, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, got, 1e-9)
}

func TestMeanAndRound2(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
	assert.Equal(t, 66.67, Round2(66.6666))
	assert.Equal(t, 12.35, Round2(12.346))
}
