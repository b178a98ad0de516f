package protocol

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transition", func() {
	flowing := Inputs{MemValid: true, Ready: true}

	It("should reset to idle with the start flag set", func() {
		s := ChannelState{State: Transfer, Cursor: 3, FlagHold: true}

		next, out := Transition(s, 4, Inputs{Reset: true, MemValid: true, Ready: true})

		Expect(next).To(Equal(ResetState()))
		Expect(next.Flag).To(BeTrue())
		Expect(out).To(Equal(Outputs{}))
	})

	It("should start a burst without asserting valid", func() {
		next, out := Transition(ResetState(), 4, flowing)

		Expect(next.State).To(Equal(Transfer))
		Expect(next.Cursor).To(Equal(1))
		Expect(out.Valid).To(BeFalse())
		Expect(out.Fetch).To(BeTrue())
	})

	It("should wait in idle while stalled", func() {
		next, out := Transition(ResetState(), 4, Inputs{Ready: true})

		Expect(next).To(Equal(ResetState()))
		Expect(out.Valid).To(BeFalse())
	})

	It("should wait in idle while the DUT is not ready", func() {
		next, _ := Transition(ResetState(), 4, Inputs{MemValid: true})

		Expect(next).To(Equal(ResetState()))
	})

	It("should assert valid at once when starting one word ahead", func() {
		s := ChannelState{State: Idle, Cursor: 1, Flag: true}

		next, out := Transition(s, 4, flowing)

		Expect(out.Valid).To(BeTrue())
		Expect(next.Cursor).To(Equal(2))
	})

	It("should gate valid on mem valid and ready during a burst", func() {
		s := ChannelState{State: Transfer, Cursor: 2}

		_, out := Transition(s, 4, Inputs{MemValid: true})
		Expect(out.Valid).To(BeFalse())
		Expect(out.Fetch).To(BeFalse())

		_, out = Transition(s, 4, Inputs{Ready: true})
		Expect(out.Valid).To(BeFalse())

		next, out := Transition(s, 4, flowing)
		Expect(out.Valid).To(BeTrue())
		Expect(next.Cursor).To(Equal(3))
	})

	It("should end the burst with a held word", func() {
		s := ChannelState{State: Transfer, Cursor: 4}

		next, out := Transition(s, 4, flowing)

		Expect(out.Valid).To(BeFalse())
		Expect(next).To(Equal(ChannelState{State: Idle, Cursor: 4, FlagHold: true}))
	})

	It("should present the held word until it is taken", func() {
		s := ChannelState{State: Idle, Cursor: 4, FlagHold: true}

		next, out := Transition(s, 4, Inputs{})
		Expect(out.Valid).To(BeTrue())
		Expect(next.FlagHold).To(BeTrue())

		next, out = Transition(s, 4, Inputs{Ready: true})
		Expect(out.Valid).To(BeTrue())
		Expect(next.FlagHold).To(BeFalse())
		Expect(next.State).To(Equal(Idle))

		_, out = Transition(next, 4, flowing)
		Expect(out.Valid).To(BeFalse())
	})

	It("should panic on a cursor beyond the image", func() {
		s := ChannelState{State: Transfer, Cursor: 5}

		Expect(func() { Transition(s, 4, flowing) }).To(Panic())
	})

	It("should never assert valid in transfer with the image exhausted", func() {
		rng := rand.New(rand.NewSource(7))

		for _, length := range []int{1, 2, 3, 8} {
			s := ResetState()
			for cycle := 0; cycle < 500; cycle++ {
				in := Inputs{
					Reset:    cycle < 4 || rng.Intn(200) == 0,
					MemValid: rng.Intn(3) != 0,
					Ready:    rng.Intn(4) != 0,
				}

				next, out := Transition(s, length, in)
				if s.State == Transfer && s.Cursor >= length {
					Expect(out.Valid).To(BeFalse())
				}
				Expect(next.Cursor).To(BeNumerically("<=", length))

				s = next
			}
		}
	})
})
