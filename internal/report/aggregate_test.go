package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

func scores(eye, expr, posture, stability, final *float64) domain.Scores {
	return domain.Scores{
		EyeContact:       eye,
		FacialExpression: expr,
		Posture:          posture,
		Stability:        stability,
		Final:            final,
	}
}

func TestAggregate(t *testing.T) {
	f := domain.Float

	tests := []struct {
		name       string
		history    []domain.Scores
		wantStatus string
		wantFinal  *float64
		wantEye    *float64
		wantPost   *float64
	}{
		{
			name:       "empty history",
			history:    nil,
			wantStatus: domain.PassStatusInsufficientData,
		},
		{
			name: "nulls count as zero and threshold is inclusive",
			history: []domain.Scores{
				scores(f(80), f(50), f(100), f(100), f(80)),
				scores(nil, f(40), f(0), f(90), f(40)),
			},
			wantStatus: domain.PassStatusPass,
			wantFinal:  f(60),
			wantEye:    f(40),
			wantPost:   f(50),
		},
		{
			name: "pass decided before rounding",
			history: []domain.Scores{
				scores(f(0), f(0), f(0), f(0), f(59.999)),
			},
			wantStatus: domain.PassStatusFail,
			wantFinal:  f(60),
			wantEye:    f(0),
			wantPost:   f(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Aggregate("s", 7, tt.history)

			assert.Equal(t, "s", r.SessionID)
			assert.Equal(t, 7, r.TotalFrames)
			assert.Equal(t, len(tt.history), r.AnalyzedFrames)
			assert.Equal(t, domain.PassThreshold, r.PassThreshold)
			assert.Equal(t, tt.wantStatus, r.PassStatus)

			if tt.wantFinal == nil {
				assert.Nil(t, r.Scores.Final)
				assert.Nil(t, r.Scores.EyeContact)
				return
			}
			require.NotNil(t, r.Scores.Final)
			assert.InDelta(t, *tt.wantFinal, *r.Scores.Final, 1e-9)
			assert.InDelta(t, *tt.wantEye, *r.Scores.EyeContact, 1e-9)
			assert.InDelta(t, *tt.wantPost, *r.Scores.Posture, 1e-9)
		})
	}
}
