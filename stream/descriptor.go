// Package stream describes the ready/valid channels of a device under test:
// the targets it reads from and the initiators it writes to.
package stream

import (
	"fmt"
	"regexp"
)

// MaxWidth is the widest word a channel can carry.
const MaxWidth = 64

// Direction tells whether a channel feeds the DUT or drains it.
type Direction int

// Channel directions.
const (
	// Target is a DUT input stream sourced from an image.
	Target Direction = iota
	// Initiator is a DUT output stream captured into a file.
	Initiator
)

func (d Direction) String() string {
	switch d {
	case Target:
		return "target"
	case Initiator:
		return "initiator"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// A Descriptor describes one channel. Name is the DUT data port and also the
// base name of the channel's image or capture file.
type Descriptor struct {
	Name    string       `json:"data" yaml:"data"`
	Valid   string       `json:"valid" yaml:"valid"`
	Ready   string       `json:"ready" yaml:"ready"`
	Width   int          `json:"width" yaml:"width"`
	Length  int          `json:"length,omitempty" yaml:"length,omitempty"`
	Formula *FormulaSpec `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// FileName returns the name of the image (targets) or capture (initiators)
// file of the channel.
func (d Descriptor) FileName() string {
	return d.Name + ".mif"
}

// HexDigits returns the number of hex digits needed to print one word.
func (d Descriptor) HexDigits() int {
	return (d.Width + 3) / 4
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Validate checks the descriptor in isolation.
func (d Descriptor) Validate(dir Direction) error {
	fields := []struct {
		field, value string
	}{
		{"data", d.Name},
		{"valid", d.Valid},
		{"ready", d.Ready},
	}
	for _, f := range fields {
		if !identifier.MatchString(f.value) {
			return &DescriptorError{
				Direction: dir,
				Channel:   d.Name,
				Field:     f.field,
				Reason:    fmt.Sprintf("%q is not a legal port name", f.value),
			}
		}
	}

	if d.Width <= 0 || d.Width > MaxWidth {
		return &DescriptorError{
			Direction: dir,
			Channel:   d.Name,
			Field:     "width",
			Reason:    fmt.Sprintf("%d is outside 1..%d", d.Width, MaxWidth),
		}
	}

	if dir == Target && d.Length <= 0 {
		return &DescriptorError{
			Direction: dir,
			Channel:   d.Name,
			Field:     "length",
			Reason:    fmt.Sprintf("%d is not a positive word count", d.Length),
		}
	}

	return nil
}
