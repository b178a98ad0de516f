package timing

import (
	"log"
)

// FreqInHz is the frequency of the global clock.
type FreqInHz uint64

// Defines the unit of frequency.
const (
	Hz  FreqInHz = 1
	KHz FreqInHz = 1e3
	MHz FreqInHz = 1e6
	GHz FreqInHz = 1e9
)

// HalfPeriodPS returns half of a clock period in picoseconds, rounded down and
// never below 1. Waveform dumps toggle the clock at this resolution.
func (f FreqInHz) HalfPeriodPS() uint64 {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	half := uint64(5e11) / uint64(f)
	if half == 0 {
		return 1
	}

	return half
}
