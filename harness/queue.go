package harness

// Queue gives every initiator a bounded FIFO fed by target i mod nTargets.
// Words come out one cycle after they are accepted. A target is ready when
// all the FIFOs it feeds have room.
type Queue struct {
	numTargets      int
	initiatorWidths []int
	queues          []*fifo
}

// NewQueue creates a queue device with depth entries per initiator.
func NewQueue(numTargets int, initiatorWidths []int, depth int) *Queue {
	q := &Queue{
		numTargets:      numTargets,
		initiatorWidths: initiatorWidths,
	}

	for range initiatorWidths {
		q.queues = append(q.queues, newFIFO(depth))
	}

	return q
}

// Reset empties every FIFO.
func (q *Queue) Reset() {
	for _, f := range q.queues {
		f.Clear()
	}
}

// Occupancy returns the number of words waiting for initiator i.
func (q *Queue) Occupancy(i int) int {
	return q.queues[i].Size()
}

// EvalReady marks a target ready when all FIFOs it feeds can take a word.
func (q *Queue) EvalReady(_, targetReady []bool) {
	for t := range targetReady {
		targetReady[t] = true
	}

	if q.numTargets == 0 {
		return
	}

	for i, f := range q.queues {
		t := i % q.numTargets
		targetReady[t] = targetReady[t] && f.CanPush()
	}
}

// EvalOutput presents the head of each FIFO.
func (q *Queue) EvalOutput(_, initiators []Beat) {
	for i, f := range q.queues {
		word, ok := f.Peek()
		initiators[i].Valid = ok
		initiators[i].Data = word & mask(q.initiatorWidths[i])
	}
}

// Commit pops delivered words and pushes accepted ones.
func (q *Queue) Commit(targets, initiators []Beat) {
	for i, f := range q.queues {
		if initiators[i].Fire() {
			f.Pop()
		}
	}

	if q.numTargets == 0 {
		return
	}

	for i, f := range q.queues {
		src := targets[i%q.numTargets]
		if src.Fire() {
			f.Push(src.Data)
		}
	}
}
