package speech

import (
	"math"
	"strings"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/rules"
)

const (
	// PauseGap is the minimum silence between two words counted as a pause.
	PauseGap = 0.5

	// ReferenceWPM is the speaking rate that earns the full rate component.
	ReferenceWPM = 160.0
)

// Input is everything captured for one session.
type Input struct {
	Transcript string
	Words      []domain.Word
	Samples    []float64
	SampleRate int
}

// Compute measures delivery over a session. It fails with
// domain.ErrNoSpeechCaptured when there is no audio.
func Compute(in Input) (domain.SpeechMetrics, float64, error) {
	if len(in.Samples) == 0 || in.SampleRate <= 0 {
		return domain.SpeechMetrics{}, 0, domain.ErrNoSpeechCaptured
	}
	duration := float64(len(in.Samples)) / float64(in.SampleRate)

	words := strings.Fields(in.Transcript)
	fillerCount := CountFillers(words)
	wpm := float64(len(words)) / (duration / 60)
	fillerRate := float64(fillerCount) / float64(max(len(words), 1))

	pauseRatio := SilentSeconds(in.Samples, in.SampleRate) / duration
	energy := Energy(in.Samples)
	pitchMean, pitchVar := Pitch(in.Samples, in.SampleRate)

	m := domain.SpeechMetrics{
		WordCount:       len(words),
		DurationSeconds: round(duration, 2),
		AvgWPM:          round(wpm, 1),
		FillerCount:     fillerCount,
		FillerRate:      round(fillerRate, 2),
		PauseCount:      CountPauses(in.Words),
		PauseRatio:      round(pauseRatio, 2),
		Energy:          round(energy, 4),
		PitchMean:       round(pitchMean, 1),
		PitchVariation:  round(pitchVar, 2),
	}
	return m, ConfidenceScore(wpm, energy, pauseRatio, pitchVar), nil
}

// ConfidenceScore combines rate, loudness, silence and monotony into [0, 1].
func ConfidenceScore(wpm, energy, pauseRatio, pitchVariation float64) float64 {
	raw := 0.4*(wpm/ReferenceWPM) + 0.3*energy - 0.2*pauseRatio - 0.1*pitchVariation
	return round(rules.Clamp(raw, 0, 1), 2)
}

// CountPauses counts gaps of at least PauseGap seconds between consecutive
// timed words.
func CountPauses(words []domain.Word) int {
	n := 0
	for i := 1; i < len(words); i++ {
		if words[i].Start-words[i-1].End >= PauseGap {
			n++
		}
	}
	return n
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
