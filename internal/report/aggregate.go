package report

import (
	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/geometry"
)

// Aggregate averages the scored history of a session. Missing component
// scores count as 0. An empty history yields an insufficient_data report
// with every score null.
func Aggregate(sessionID string, totalFrames int, history []domain.Scores) domain.SessionReport {
	r := domain.SessionReport{
		SessionID:      sessionID,
		TotalFrames:    totalFrames,
		AnalyzedFrames: len(history),
		PassThreshold:  domain.PassThreshold,
	}
	if len(history) == 0 {
		r.PassStatus = domain.PassStatusInsufficientData
		return r
	}

	var eye, expr, posture, stability, final float64
	for _, s := range history {
		eye += orZero(s.EyeContact)
		expr += orZero(s.FacialExpression)
		posture += orZero(s.Posture)
		stability += orZero(s.Stability)
		final += orZero(s.Final)
	}
	n := float64(len(history))
	avgFinal := final / n

	r.Scores = domain.Scores{
		EyeContact:       domain.Float(geometry.Round2(eye / n)),
		FacialExpression: domain.Float(geometry.Round2(expr / n)),
		Posture:          domain.Float(geometry.Round2(posture / n)),
		Stability:        domain.Float(geometry.Round2(stability / n)),
		Final:            domain.Float(geometry.Round2(avgFinal)),
	}
	if avgFinal >= domain.PassThreshold {
		r.PassStatus = domain.PassStatusPass
	} else {
		r.PassStatus = domain.PassStatusFail
	}
	return r
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
