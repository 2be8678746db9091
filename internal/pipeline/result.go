package pipeline

// Result is the outcome of one stage. Exactly four kinds exist; the
// unexported marker keeps the set closed.
type Result interface {
	isResult()
}

// Continue lets the next stage run. Data is informational only.
type Continue struct {
	Data map[string]any
}

// Fail ends the frame with insufficient data.
type Fail struct {
	Message string
}

// Skip ends the frame without affecting any accumulator.
type Skip struct {
	Reason string
}

// Cancel ends the frame and terminates the session.
type Cancel struct {
	Reason string
}

func (Continue) isResult() {}
func (Fail) isResult()     {}
func (Skip) isResult()     {}
func (Cancel) isResult()   {}

// Outcome names a result kind for logs and metrics.
func Outcome(r Result) string {
	switch r.(type) {
	case Continue:
		return "continue"
	case Fail:
		return "fail"
	case Skip:
		return "skip"
	case Cancel:
		return "cancel"
	default:
		return "unknown"
	}
}
