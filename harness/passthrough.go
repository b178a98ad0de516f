package harness

// Passthrough wires initiator i straight to target i mod nTargets. A target
// is ready only when every initiator it feeds is ready, and words are cut to
// the initiator width.
type Passthrough struct {
	numTargets      int
	initiatorWidths []int
}

// NewPassthrough creates a passthrough device.
func NewPassthrough(numTargets int, initiatorWidths []int) *Passthrough {
	return &Passthrough{
		numTargets:      numTargets,
		initiatorWidths: initiatorWidths,
	}
}

// Reset does nothing; the device holds no state.
func (p *Passthrough) Reset() {}

// EvalReady ANDs the readies of the initiators each target feeds.
func (p *Passthrough) EvalReady(initiatorReady, targetReady []bool) {
	for t := range targetReady {
		targetReady[t] = true
	}

	if p.numTargets == 0 {
		return
	}

	for i, ready := range initiatorReady {
		t := i % p.numTargets
		targetReady[t] = targetReady[t] && ready
	}
}

// EvalOutput forwards the target words that fire this cycle.
func (p *Passthrough) EvalOutput(targets, initiators []Beat) {
	for i := range initiators {
		if p.numTargets == 0 {
			initiators[i].Valid = false
			initiators[i].Data = 0
			continue
		}

		src := targets[i%p.numTargets]
		initiators[i].Valid = src.Fire()
		initiators[i].Data = src.Data & mask(p.initiatorWidths[i])
	}
}

// Commit does nothing; the device holds no state.
func (p *Passthrough) Commit(_, _ []Beat) {}
