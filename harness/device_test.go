package harness

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Passthrough", func() {
	It("should hold a target until every initiator it feeds is ready", func() {
		p := NewPassthrough(1, []int{8, 8})
		targetReady := make([]bool, 1)

		p.EvalReady([]bool{true, false}, targetReady)
		Expect(targetReady).To(Equal([]bool{false}))

		targets := []Beat{{Valid: true, Ready: targetReady[0], Data: 7}}
		initiators := []Beat{{Ready: true}, {Ready: false}}
		p.EvalOutput(targets, initiators)

		Expect(initiators[0].Fire()).To(BeFalse())
		Expect(initiators[1].Fire()).To(BeFalse())
	})

	It("should cut words to the initiator width", func() {
		p := NewPassthrough(2, []int{4, 16, 8})
		targetReady := make([]bool, 2)
		p.EvalReady([]bool{true, true, true}, targetReady)
		Expect(targetReady).To(Equal([]bool{true, true}))

		targets := []Beat{
			{Valid: true, Ready: true, Data: 0x1ab},
			{Valid: true, Ready: true, Data: 0xcd},
		}
		initiators := []Beat{{Ready: true}, {Ready: true}, {Ready: true}}
		p.EvalOutput(targets, initiators)

		Expect(initiators[0].Data).To(Equal(uint64(0xb)))
		Expect(initiators[1].Data).To(Equal(uint64(0xcd)))
		Expect(initiators[2].Data).To(Equal(uint64(0xab)))
	})

	It("should keep initiators idle without targets", func() {
		p := NewPassthrough(0, []int{8})
		initiators := []Beat{{Ready: true, Valid: true}}

		p.EvalOutput(nil, initiators)

		Expect(initiators[0].Valid).To(BeFalse())
	})
})

var _ = Describe("Queue", func() {
	It("should deliver a word one cycle after accepting it", func() {
		q := NewQueue(1, []int{8}, 2)
		targetReady := make([]bool, 1)
		initiators := []Beat{{Ready: true}}

		q.EvalReady([]bool{true}, targetReady)
		targets := []Beat{{Valid: true, Ready: targetReady[0], Data: 0x42}}
		q.EvalOutput(targets, initiators)
		Expect(initiators[0].Valid).To(BeFalse())
		q.Commit(targets, initiators)
		Expect(q.Occupancy(0)).To(Equal(1))

		targets = []Beat{{Valid: false, Ready: true}}
		q.EvalOutput(targets, initiators)
		Expect(initiators[0].Fire()).To(BeTrue())
		Expect(initiators[0].Data).To(Equal(uint64(0x42)))
		q.Commit(targets, initiators)
		Expect(q.Occupancy(0)).To(BeZero())
	})

	It("should refuse words when full", func() {
		q := NewQueue(1, []int{8}, 1)
		targetReady := make([]bool, 1)
		initiators := []Beat{{Ready: false}}
		targets := []Beat{{Valid: true, Ready: true, Data: 1}}
		q.EvalOutput(targets, initiators)
		q.Commit(targets, initiators)

		q.EvalReady([]bool{false}, targetReady)

		Expect(targetReady).To(Equal([]bool{false}))
	})

	It("should empty on reset", func() {
		q := NewQueue(1, []int{8}, 4)
		targets := []Beat{{Valid: true, Ready: true, Data: 1}}
		initiators := []Beat{{}}
		q.Commit(targets, initiators)

		q.Reset()

		Expect(q.Occupancy(0)).To(BeZero())
	})
})

var _ = Describe("fifo", func() {
	It("should panic on overflow and underflow", func() {
		f := newFIFO(1)
		f.Push(1)

		Expect(func() { f.Push(2) }).To(Panic())
		Expect(f.Pop()).To(Equal(uint64(1)))
		Expect(func() { f.Pop() }).To(Panic())
	})
})
