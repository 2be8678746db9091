package speech

import (
	"encoding/binary"
	"math"
)

const (
	frameLength = 2048
	hopLength   = 512

	// silenceTopDB marks frames this far below the loudest frame as silent.
	silenceTopDB = 25.0

	pitchFrame    = 1024
	minPitchHz    = 75.0
	maxPitchHz    = 500.0
	voicingCutoff = 0.3
)

// DecodePCM16 converts little-endian signed 16-bit mono PCM to samples in
// [-1, 1]. A trailing odd byte is ignored.
func DecodePCM16(pcm []byte) []float64 {
	n := len(pcm) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		out[i] = float64(v) / 32768
	}
	return out
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// frameRMS returns the RMS of each analysis frame and the start offset of
// each frame. Signals shorter than a frame form a single frame.
func frameRMS(samples []float64) (values []float64, starts []int) {
	if len(samples) == 0 {
		return nil, nil
	}
	if len(samples) < frameLength {
		return []float64{rms(samples)}, []int{0}
	}
	for start := 0; start+frameLength <= len(samples); start += hopLength {
		values = append(values, rms(samples[start:start+frameLength]))
		starts = append(starts, start)
	}
	return values, starts
}

// Energy is the mean frame RMS.
func Energy(samples []float64) float64 {
	values, _ := frameRMS(samples)
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func silenceThreshold(values []float64) float64 {
	var peak float64
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	return peak * math.Pow(10, -silenceTopDB/20)
}

// SilentSeconds estimates how much of the signal is silence. Each frame owns
// the samples up to the next frame start; the last frame owns the tail.
func SilentSeconds(samples []float64, sampleRate int) float64 {
	values, starts := frameRMS(samples)
	if len(values) == 0 || sampleRate <= 0 {
		return 0
	}
	threshold := silenceThreshold(values)

	silent := 0
	for i, v := range values {
		end := len(samples)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if v <= threshold {
			silent += end - starts[i]
		}
	}
	return float64(silent) / float64(sampleRate)
}

// Pitch estimates the fundamental frequency of voiced frames by
// autocorrelation and returns its mean and coefficient of variation
// (std/mean). Both are 0 when nothing is voiced.
func Pitch(samples []float64, sampleRate int) (mean, variation float64) {
	if sampleRate <= 0 {
		return 0, 0
	}
	minLag := int(float64(sampleRate) / maxPitchHz)
	maxLag := int(float64(sampleRate) / minPitchHz)
	if maxLag >= pitchFrame {
		maxLag = pitchFrame - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0, 0
	}

	values, _ := frameRMS(samples)
	threshold := silenceThreshold(values)

	var f0s []float64
	for start := 0; start+pitchFrame <= len(samples); start += pitchFrame {
		frame := samples[start : start+pitchFrame]
		if rms(frame) <= threshold {
			continue
		}
		if f0, ok := estimateF0(frame, minLag, maxLag, sampleRate); ok {
			f0s = append(f0s, f0)
		}
	}
	if len(f0s) == 0 {
		return 0, 0
	}

	for _, f := range f0s {
		mean += f
	}
	mean /= float64(len(f0s))

	var ss float64
	for _, f := range f0s {
		ss += (f - mean) * (f - mean)
	}
	std := math.Sqrt(ss / float64(len(f0s)))
	return mean, std / mean
}

func estimateF0(frame []float64, minLag, maxLag, sampleRate int) (float64, bool) {
	var r0 float64
	for _, s := range frame {
		r0 += s * s
	}
	if r0 == 0 {
		return 0, false
	}

	bestLag, best := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var r float64
		for i := 0; i+lag < len(frame); i++ {
			r += frame[i] * frame[i+lag]
		}
		if r > best {
			best, bestLag = r, lag
		}
	}
	if bestLag == 0 || best/r0 < voicingCutoff {
		return 0, false
	}
	return float64(sampleRate) / float64(bestLag), true
}
