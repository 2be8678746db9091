package eyecontact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/poise/internal/session"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		face      domain.FaceLandmarks
		wantBlink bool
		wantGaze  bool
	}{
		{"attentive", mock.Face().Build(), false, true},
		{"blink at 0.18", mock.Face().EAR(0.18).Build(), true, false},
		{"ear exactly at threshold is not a blink", mock.Face().EAR(0.21).Build(), false, true},
		{"looking sideways", mock.Face().LookAway().Build(), false, false},
		{"looking up", mock.Face().Iris(0, -0.009).Build(), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Evaluate(tt.face, mock.DefaultWidth)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBlink, m.Blink)
			assert.Equal(t, tt.wantGaze, m.TowardCamera)
		})
	}
}

func TestEvaluate_GazeRatiosCentered(t *testing.T) {
	m, err := Evaluate(mock.Face().Build(), mock.DefaultWidth)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, m.LeftRatio, 1e-9)
	assert.InDelta(t, 1.0, m.RightRatio, 1e-9)
	assert.InDelta(t, 0.5, m.LeftVertical, 1e-9)
	assert.InDelta(t, 0.5, m.RightVertical, 1e-9)
}

func TestEvaluate_ShortMesh(t *testing.T) {
	_, err := Evaluate(make(domain.FaceLandmarks, 100), 0.25)
	assert.Error(t, err)
}

func TestGazeRatio_DegenerateOuterDistance(t *testing.T) {
	iris := domain.Point{X: 0.5, Y: 0.5}
	assert.Equal(t, 1.0, gazeRatio(iris, domain.Point{X: 0.4, Y: 0.5}, iris, 0.25))
}

func TestVerticalGaze_DegenerateHeight(t *testing.T) {
	p := domain.Point{X: 0.5, Y: 0.5}
	assert.Equal(t, 0.5, verticalGaze(domain.Point{X: 0.5, Y: 0.9}, p, p))
}

func TestRecord(t *testing.T) {
	s := session.NewRegistry().Get("s")

	Record(s, true)
	Record(s, false)
	Record(s, true)

	assert.Equal(t, 2, s.EyeContactFrames)
	assert.Equal(t, 3, s.TotalProcessedFrames)
	assert.LessOrEqual(t, s.EyeContactFrames, s.TotalProcessedFrames)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0.0, Score(0, 0), "no frames scores zero, not null")
	assert.InDelta(t, 50.0, Score(1, 2), 1e-12)
	assert.InDelta(t, 100.0, Score(4, 4), 1e-12)
}
