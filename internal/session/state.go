package session

import (
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

// State is the temporal memory of one interview session. Callers hold the
// embedded mutex for the whole of a frame so that the frame's stages and
// a concurrent summary read never interleave.
type State struct {
	sync.Mutex

	StartTime          time.Time
	IsCancelled        bool
	CancellationReason string

	PreviousLandmarks domain.FaceLandmarks
	// PreviousNosePos holds 2 or 3 coordinates; nil until the first frame
	// completes the pipeline.
	PreviousNosePos  []float64
	FaceWidthHistory []float64

	// Blink frames touch neither counter.
	EyeContactFrames     int
	TotalProcessedFrames int
	MultiFaceCounter     int

	FacialEngagementScores []float64
	PostureScores          []float64
	StabilityScores        []float64
}

func newState(now time.Time) *State {
	return &State{StartTime: now}
}

// CanProcessFrame reports whether frames may still be analyzed.
func (s *State) CanProcessFrame() bool {
	return !s.IsCancelled
}

// HasPreviousFrame reports whether engagement and stability can be computed.
func (s *State) HasPreviousFrame() bool {
	return s.PreviousLandmarks != nil
}

// AverageFaceWidth returns the mean recorded width, false when none.
func (s *State) AverageFaceWidth() (float64, bool) {
	if len(s.FaceWidthHistory) == 0 {
		return 0, false
	}
	var sum float64
	for _, w := range s.FaceWidthHistory {
		sum += w
	}
	return sum / float64(len(s.FaceWidthHistory)), true
}

// markCancelled latches cancellation. The first reason wins.
func (s *State) markCancelled(reason string) {
	if s.IsCancelled {
		return
	}
	s.IsCancelled = true
	s.CancellationReason = reason
}

// Snapshot is a lock-free copy of the counters.
type Snapshot struct {
	StartTime            time.Time
	IsCancelled          bool
	CancellationReason   string
	EyeContactFrames     int
	TotalProcessedFrames int
	MultiFaceCounter     int
}

// Snapshot copies the counters under the state lock.
func (s *State) Snapshot() Snapshot {
	s.Lock()
	defer s.Unlock()

	return Snapshot{
		StartTime:            s.StartTime,
		IsCancelled:          s.IsCancelled,
		CancellationReason:   s.CancellationReason,
		EyeContactFrames:     s.EyeContactFrames,
		TotalProcessedFrames: s.TotalProcessedFrames,
		MultiFaceCounter:     s.MultiFaceCounter,
	}
}
