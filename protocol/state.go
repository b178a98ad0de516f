// Package protocol holds the cycle-level pieces of a ready/valid harness: the
// per-target channel state machine, the shared stall sequence generator and
// the per-initiator sink recorder.
package protocol

import (
	"fmt"
	"log"
)

// State is the phase of a channel state machine.
type State int

// Channel phases.
const (
	Idle State = iota
	Transfer
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Transfer:
		return "TRANSFER"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ChannelState is the registered state of one target channel.
//
// Cursor counts the words fetched from the image into the channel's data
// register, so the register holds word Cursor-1. Flag stays set until the
// first burst starts. FlagHold presents the last fetched word for one more
// handshake after the burst returns to Idle.
type ChannelState struct {
	State    State
	Cursor   int
	Flag     bool
	FlagHold bool
}

// ResetState is the state a channel holds while reset is asserted.
func ResetState() ChannelState {
	return ChannelState{State: Idle, Flag: true}
}

// Inputs are the signals a channel samples in a cycle.
type Inputs struct {
	Reset bool
	// MemValid is false when the stall generator suppresses the channel.
	MemValid bool
	// Ready is the DUT's ready for this target.
	Ready bool
}

// Outputs are the combinational results of a cycle.
type Outputs struct {
	Valid bool
	// Fetch loads the next image word into the data register at the clock
	// edge.
	Fetch bool
}

// Transition computes the next state and the outputs of a channel whose
// image holds length words. It panics if the cursor would leave [0, length].
func Transition(
	s ChannelState,
	length int,
	in Inputs,
) (ChannelState, Outputs) {
	if in.Reset {
		return ResetState(), Outputs{}
	}

	if s.Cursor < 0 || s.Cursor > length {
		log.Panicf("cursor %d outside [0, %d]", s.Cursor, length)
	}

	next := s
	out := Outputs{}

	switch s.State {
	case Idle:
		out.Valid = s.FlagHold
		if s.FlagHold && in.Ready {
			next.FlagHold = false
		}

		if in.MemValid && in.Ready && s.Flag {
			next.State = Transfer
			out.Valid = s.Cursor == 1
			out.Fetch = true
		}
	case Transfer:
		next.Flag = false

		if s.Cursor == length {
			next.State = Idle
			next.FlagHold = true
		} else {
			out.Valid = in.MemValid && in.Ready
			out.Fetch = out.Valid
		}
	default:
		log.Panicf("unknown channel state %d", int(s.State))
	}

	if out.Fetch {
		if s.Cursor >= length {
			log.Panicf("fetch past the end of a %d word image", length)
		}
		next.Cursor++
	}

	return next, out
}
