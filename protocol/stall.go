package protocol

import "fmt"

// Role tells which side of the DUT a stalled channel sits on.
type Role int

// Channel roles.
const (
	TargetRole Role = iota
	InitiatorRole
)

func (r Role) String() string {
	switch r {
	case TargetRole:
		return "target"
	case InitiatorRole:
		return "initiator"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

const lfsrReset = 0b100000

// A StallGenerator decides every cycle which channels are held back. All
// channels read the same counter, which only Tick advances.
type StallGenerator struct {
	seed        uint32
	injectValid bool
	injectReady bool
	pattern     bool

	counter uint32
	lfsr    uint8
}

// NewStallGenerator creates a generator in its reset state. injectValid
// stalls targets and injectReady stalls initiators.
func NewStallGenerator(
	seed uint32,
	injectValid, injectReady bool,
) *StallGenerator {
	g := &StallGenerator{
		seed:        seed,
		injectValid: injectValid,
		injectReady: injectReady,
		pattern:     true,
	}
	g.Reset()

	return g
}

// WithPattern turns the LFSR fold on or off. Without it the counter advances
// by exactly one per cycle.
func (g *StallGenerator) WithPattern(on bool) *StallGenerator {
	g.pattern = on
	return g
}

// Reset reloads the counter from the seed.
func (g *StallGenerator) Reset() {
	g.counter = g.seed
	g.lfsr = lfsrReset
}

// Seed returns the value the counter is reset to.
func (g *StallGenerator) Seed() uint32 {
	return g.seed
}

// Counter returns the current counter.
func (g *StallGenerator) Counter() uint32 {
	return g.counter
}

// LFSR returns the current 6-bit pattern register.
func (g *StallGenerator) LFSR() uint8 {
	return g.lfsr
}

// NextStall tells whether the channel at index is suppressed this cycle.
func (g *StallGenerator) NextStall(index int, role Role) bool {
	switch role {
	case TargetRole:
		return g.injectValid && g.counter%uint32(2*index+45) != 0
	case InitiatorRole:
		return g.injectReady && g.counter%uint32(5*(index+32)) != 0
	default:
		panic(fmt.Sprintf("unknown role %d", int(role)))
	}
}

// Tick advances the counter at the clock edge.
func (g *StallGenerator) Tick() {
	if !g.pattern {
		g.counter++
		return
	}

	g.counter += 1 + uint32(g.lfsr)
	g.lfsr = stepLFSR(g.lfsr)
}

// stepLFSR steps a Galois register with polynomial x^6+x+1.
func stepLFSR(v uint8) uint8 {
	rotated := ((v << 1) | (v >> 5)) & 0x3f
	feedback := (v ^ v>>5) & 1

	return rotated&^0b10 | feedback<<1
}
