package protocol

import (
	"log"

	"github.com/sarchlab/rvbench/image"
)

// A Channel drives one target from its image.
type Channel struct {
	name  string
	image image.Image
	state ChannelState
	data  uint64
}

// NewChannel creates a channel in its reset state. The image must hold at
// least one word.
func NewChannel(name string, img image.Image) *Channel {
	if img.Len() == 0 {
		log.Panicf("channel %s: empty image", name)
	}

	return &Channel{
		name:  name,
		image: img,
		state: ResetState(),
	}
}

// Name returns the data port the channel drives.
func (c *Channel) Name() string {
	return c.name
}

// Width returns the word width of the channel.
func (c *Channel) Width() int {
	return c.image.Width
}

// Length returns the number of words in the image.
func (c *Channel) Length() int {
	return c.image.Len()
}

// State returns the registered state.
func (c *Channel) State() ChannelState {
	return c.state
}

// Data returns the word in the data register.
func (c *Channel) Data() uint64 {
	return c.data
}

// Eval returns this cycle's outputs without changing the channel.
func (c *Channel) Eval(in Inputs) Outputs {
	_, out := Transition(c.state, c.image.Len(), in)
	return out
}

// Commit applies the clock edge for the inputs of the cycle.
func (c *Channel) Commit(in Inputs) {
	next, out := Transition(c.state, c.image.Len(), in)

	switch {
	case in.Reset:
		c.data = 0
	case out.Fetch:
		c.data = c.image.Words[c.state.Cursor]
	}

	c.state = next
}
