package harness

import "log"

// fifo is a bounded first-in-first-out queue of words.
type fifo struct {
	capacity int
	elements []uint64
}

func newFIFO(capacity int) *fifo {
	if capacity <= 0 {
		log.Panicf("fifo capacity %d must be positive", capacity)
	}

	return &fifo{capacity: capacity}
}

func (f *fifo) CanPush() bool {
	return len(f.elements) < f.capacity
}

func (f *fifo) Push(e uint64) {
	if len(f.elements) >= f.capacity {
		log.Panic("fifo overflow")
	}

	f.elements = append(f.elements, e)
}

func (f *fifo) Pop() uint64 {
	if len(f.elements) == 0 {
		log.Panic("pop from empty fifo")
	}

	e := f.elements[0]
	f.elements = f.elements[1:]

	return e
}

func (f *fifo) Peek() (uint64, bool) {
	if len(f.elements) == 0 {
		return 0, false
	}

	return f.elements[0], true
}

func (f *fifo) Size() int {
	return len(f.elements)
}

func (f *fifo) Clear() {
	f.elements = nil
}
