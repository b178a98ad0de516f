package harness

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/rvbench/image"
	"github.com/sarchlab/rvbench/protocol"
	"github.com/sarchlab/rvbench/stream"
	"github.com/sarchlab/rvbench/timing"
)

// Defaults of the builder.
const (
	DefaultResetCycles  = 20
	DefaultSettleMargin = 100
	minResetCycles      = 4
)

// Builder can build harnesses.
type Builder struct {
	engine       timing.Engine
	device       Device
	seed         uint32
	injectValid  bool
	injectReady  bool
	noPattern    bool
	resetCycles  int
	settleMargin int
	images       map[string]image.Image
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		resetCycles:  DefaultResetCycles,
		settleMargin: DefaultSettleMargin,
	}
}

// WithEngine sets the engine that drives the harness. A new serial engine is
// used if none is given.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithDevice sets the device model. A passthrough device is used if none is
// given.
func (b Builder) WithDevice(d Device) Builder {
	b.device = d
	return b
}

// WithSeed sets the value the stall counter is reset to.
func (b Builder) WithSeed(seed uint32) Builder {
	b.seed = seed
	return b
}

// WithStallInjection turns on valid stalls on targets and ready stalls on
// initiators.
func (b Builder) WithStallInjection(valid, ready bool) Builder {
	b.injectValid = valid
	b.injectReady = ready

	return b
}

// WithoutStallPattern makes the stall counter advance by one per cycle.
func (b Builder) WithoutStallPattern() Builder {
	b.noPattern = true
	return b
}

// WithResetCycles sets how long reset is held. The value is rounded up to an
// even number of at least 4.
func (b Builder) WithResetCycles(n int) Builder {
	b.resetCycles = n
	return b
}

// WithSettleMargin sets the cycles added to every target's length when
// computing the cycle budget.
func (b Builder) WithSettleMargin(m int) Builder {
	b.settleMargin = m
	return b
}

// WithImages sets the target images, keyed by data port name.
func (b Builder) WithImages(images map[string]image.Image) Builder {
	b.images = images
	return b
}

// NormalizeResetCycles rounds n up to an even number of at least 4.
func NormalizeResetCycles(n int) int {
	if n < minResetCycles {
		return minResetCycles
	}

	return n + n%2
}

// Build creates a harness for a project.
func (b Builder) Build(name string, p *stream.Project) (*Harness, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if b.settleMargin < 0 {
		return nil, errors.Errorf("negative settle margin %d", b.settleMargin)
	}

	h := &Harness{
		project:     p,
		engine:      b.engine,
		device:      b.device,
		stall:       protocol.NewStallGenerator(b.seed, b.injectValid, b.injectReady),
		resetCycles: NormalizeResetCycles(b.resetCycles),
	}

	if b.noPattern {
		h.stall.WithPattern(false)
	}

	if h.engine == nil {
		h.engine = timing.NewSerialEngine()
	}

	if err := b.buildChannels(h, p); err != nil {
		return nil, err
	}

	widths := make([]int, len(p.Initiators))
	for i, d := range p.Initiators {
		widths[i] = d.Width
		h.sinks = append(h.sinks, protocol.NewSink(d.Name, d.Width))
	}

	if h.device == nil {
		h.device = NewPassthrough(len(p.Targets), widths)
	}

	h.targetIn = make([]protocol.Inputs, len(h.channels))
	h.targetReady = make([]bool, len(h.channels))
	h.targetBeats = make([]Beat, len(h.channels))
	h.targetStalled = make([]bool, len(h.channels))
	h.initiatorReady = make([]bool, len(h.sinks))
	h.initiatorBeats = make([]Beat, len(h.sinks))
	h.initiatorStalled = make([]bool, len(h.sinks))

	h.budget = h.resetCycles + b.cycleBudget(p)

	h.TickingComponent = timing.NewTickingComponent(name, h.engine, h)

	return h, nil
}

func (b Builder) buildChannels(h *Harness, p *stream.Project) error {
	for _, d := range p.Targets {
		img, found := b.images[d.Name]
		if !found {
			return errors.Errorf("no image for target %q", d.Name)
		}

		if img.Width != d.Width {
			return errors.Errorf("image of target %q is %d bits wide, want %d",
				d.Name, img.Width, d.Width)
		}

		if img.Len() != d.Length {
			return errors.Errorf("image of target %q has %d words, want %d",
				d.Name, img.Len(), d.Length)
		}

		h.channels = append(h.channels, protocol.NewChannel(d.Name, img))
	}

	return nil
}

// cycleBudget gives every target its length plus the settle margin. A
// project without targets still runs for one margin.
func (b Builder) cycleBudget(p *stream.Project) int {
	if len(p.Targets) == 0 {
		return b.settleMargin
	}

	total := 0
	for _, d := range p.Targets {
		total += d.Length + b.settleMargin
	}

	return total
}
