package harness

// A Beat is what a ready/valid channel carries in one cycle.
type Beat struct {
	Valid bool
	Ready bool
	Data  uint64
}

// Fire tells whether the beat transfers a word.
func (b Beat) Fire() bool {
	return b.Valid && b.Ready
}

// A Device is a behavioral model of the design under test. The harness calls
// EvalReady and EvalOutput once per cycle, in that order, and Commit at the
// clock edge.
type Device interface {
	// Reset returns the device to its power-on state.
	Reset()

	// EvalReady fills targetReady from the device state and the initiator
	// ready signals of the cycle.
	EvalReady(initiatorReady, targetReady []bool)

	// EvalOutput sets Valid and Data of the initiator beats. The target beats
	// and the initiator Ready fields are already settled.
	EvalOutput(targets, initiators []Beat)

	// Commit applies the clock edge.
	Commit(targets, initiators []Beat)
}

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return 1<<uint(width) - 1
}
