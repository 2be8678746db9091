// Package integrity enforces the single-candidate rule of an interview.
package integrity

import (
	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/rules"
	"github.com/saturnino-fabrica-de-software/poise/internal/session"
)

type Enforcer struct {
	Threshold int
}

func NewEnforcer() *Enforcer {
	return &Enforcer{Threshold: rules.MultiFaceThreshold}
}

// Check updates the multi-face streak of s for a frame with faceCount faces
// and returns the cancellation reason once the streak reaches the threshold.
// Any frame with at most one face resets the streak. The caller holds the
// session lock.
func (e *Enforcer) Check(faceCount int, s *session.State) (reason string, cancel bool) {
	if faceCount <= 1 {
		s.MultiFaceCounter = 0
		return "", false
	}

	s.MultiFaceCounter++
	if rules.IsMultiFaceViolation(faceCount, s.MultiFaceCounter, e.Threshold) {
		return domain.ReasonMultipleFaces, true
	}
	return "", false
}
