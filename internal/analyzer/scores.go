package analyzer

import (
	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/geometry"
	"github.com/saturnino-fabrica-de-software/poise/internal/rules"
	"github.com/saturnino-fabrica-de-software/poise/internal/session"
)

// composite scores the whole session history held in s. Missing components
// are null and the final score only exists when all four do. Insights are
// evaluated on unrounded values. The caller holds the session lock.
func composite(s *session.State) (domain.Scores, []string) {
	var eye, engagement, posture, stability *float64

	if s.TotalProcessedFrames > 0 {
		v := float64(s.EyeContactFrames) / float64(s.TotalProcessedFrames) * 100
		eye = &v
	}
	if len(s.FacialEngagementScores) > 0 {
		v := min(rules.MaxScore, geometry.Mean(s.FacialEngagementScores)*rules.EngagementScale)
		engagement = &v
	}
	if len(s.PostureScores) > 0 {
		v := geometry.Mean(s.PostureScores)
		posture = &v
	}
	if len(s.StabilityScores) > 0 {
		v := geometry.Mean(s.StabilityScores)
		stability = &v
	}

	var final *float64
	if eye != nil && engagement != nil && posture != nil && stability != nil {
		v := rules.WeightEyeContact*(*eye) +
			rules.WeightEngagement*(*engagement) +
			rules.WeightPosture*(*posture) +
			rules.WeightStability*(*stability)
		final = &v
	}

	insights := []string{}
	if below(eye, rules.InsightThreshold) {
		insights = append(insights, domain.InsightEyeContact)
	}
	if below(posture, rules.InsightThreshold) {
		insights = append(insights, domain.InsightPosture)
	}
	if below(stability, rules.InsightThreshold) {
		insights = append(insights, domain.InsightStability)
	}
	if below(engagement, rules.EngagementInsightThreshold) {
		insights = append(insights, domain.InsightFacialEngagement)
	}

	return domain.Scores{
		EyeContact:       round(eye),
		FacialExpression: round(engagement),
		Posture:          round(posture),
		Stability:        round(stability),
		Final:            round(final),
	}, insights
}

func below(v *float64, threshold float64) bool {
	return v != nil && *v < threshold
}

func round(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := geometry.Round2(rules.ClampScore(*v))
	return &r
}
