// Package emit renders the Verilator harness sources of a project.
package emit

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/sarchlab/rvbench/harness"
	"github.com/sarchlab/rvbench/stream"
)

// A Port is one channel as the templates see it.
type Port struct {
	Index  int
	Data   string
	Valid  string
	Ready  string
	Width  int
	Length int
	// CursorWidth is the number of bits needed to count 0..Length.
	CursorWidth int
	// Modulus is the stall counter divisor of the channel.
	Modulus int
	File    string
	// Ticks is the number of clock cycles the driver runs for the target.
	Ticks int
}

// A Binding connects a DUT port to a harness signal.
type Binding struct {
	Port   string
	Signal string
}

// TemplateContext is everything the templates need.
type TemplateContext struct {
	Top              string
	TopFile          string
	Clock            string
	Reset            string
	ResetHalfPeriods int
	SettleMargin     int

	Targets    []Port
	Initiators []Port
	Ports      []Binding
}

// NewContext builds the template context of a validated project, with the
// default reset length and settle margin.
func NewContext(p *stream.Project) (*TemplateContext, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx := &TemplateContext{
		Top:     p.Top,
		TopFile: p.TopFileName(),
		Clock:   p.Clock,
		Reset:   p.Reset,
	}

	for i, d := range p.Targets {
		ctx.Targets = append(ctx.Targets, Port{
			Index:       i,
			Data:        d.Name,
			Valid:       d.Valid,
			Ready:       d.Ready,
			Width:       d.Width,
			Length:      d.Length,
			CursorWidth: bits.Len(uint(d.Length)),
			Modulus:     2*i + 45,
			File:        d.FileName(),
		})
	}

	for i, d := range p.Initiators {
		ctx.Initiators = append(ctx.Initiators, Port{
			Index:   i,
			Data:    d.Name,
			Valid:   d.Valid,
			Ready:   d.Ready,
			Width:   d.Width,
			Modulus: 5 * (i + 32),
			File:    d.FileName(),
		})
	}

	ctx.bind()

	return ctx.
		WithResetCycles(harness.DefaultResetCycles).
		WithSettleMargin(harness.DefaultSettleMargin)
}

// WithResetCycles sets how many clock cycles reset is held.
func (c *TemplateContext) WithResetCycles(n int) *TemplateContext {
	c.ResetHalfPeriods = 2 * harness.NormalizeResetCycles(n)
	return c
}

// WithSettleMargin sets the cycles run past the length of each target. The
// margin cannot be negative.
func (c *TemplateContext) WithSettleMargin(m int) (*TemplateContext, error) {
	if m < 0 {
		return nil, errors.Errorf("negative settle margin %d", m)
	}

	c.SettleMargin = m
	for i := range c.Targets {
		c.Targets[i].Ticks = c.Targets[i].Length + m
	}

	return c, nil
}

func (c *TemplateContext) bind() {
	c.Ports = nil

	for _, t := range c.Targets {
		prefix := "t" + itoa(t.Index)
		c.Ports = append(c.Ports,
			Binding{Port: t.Data, Signal: prefix + "_data"},
			Binding{Port: t.Ready, Signal: prefix + "_ready"},
			Binding{Port: t.Valid, Signal: prefix + "_valid"},
		)
	}

	for _, i := range c.Initiators {
		prefix := "i" + itoa(i.Index)
		c.Ports = append(c.Ports,
			Binding{Port: i.Data, Signal: prefix + "_data"},
			Binding{Port: i.Ready, Signal: prefix + "_ready"},
			Binding{Port: i.Valid, Signal: prefix + "_valid"},
		)
	}

	if c.Clock != "" {
		c.Ports = append(c.Ports, Binding{Port: c.Clock, Signal: "i_clk"})
	}

	if c.Reset != "" {
		c.Ports = append(c.Ports, Binding{Port: c.Reset, Signal: "i_rst_p"})
	}
}
