// Package harness runs a ready/valid verification harness cycle by cycle
// against a behavioral model of the design under test.
package harness

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/sarchlab/rvbench/hooking"
	"github.com/sarchlab/rvbench/image"
	"github.com/sarchlab/rvbench/protocol"
	"github.com/sarchlab/rvbench/stream"
	"github.com/sarchlab/rvbench/timing"
)

// HookPosCycle fires after every cycle with a CycleRecord as the item.
var HookPosCycle = &hooking.HookPos{Name: "Harness Cycle"}

// HookPosAccept fires for every word that crosses a channel, with a Transfer
// as the item.
var HookPosAccept = &hooking.HookPos{Name: "Harness Accept"}

// A CycleRecord captures the signals of one cycle.
type CycleRecord struct {
	Cycle   int
	Reset   bool
	Counter uint32

	Targets          []Beat
	Initiators       []Beat
	TargetStalled    []bool
	InitiatorStalled []bool
}

// A Transfer is one accepted word.
type Transfer struct {
	Cycle     int
	Direction stream.Direction
	Index     int
	Channel   string
	Width     int
	Word      uint64
}

// SelectFunction maps a stall selection number to valid and ready
// injection: 0 none, 1 valid, 2 ready, 3 both.
func SelectFunction(n int) (injectValid, injectReady bool, err error) {
	if n < 0 || n > 3 {
		return false, false, errors.Errorf(
			"select function %d outside 0..3", n)
	}

	return n&1 != 0, n&2 != 0, nil
}

// Harness feeds images into a device and records what comes out.
type Harness struct {
	*timing.TickingComponent

	engine  timing.Engine
	project *stream.Project
	device  Device
	stall   *protocol.StallGenerator

	channels []*protocol.Channel
	sinks    []*protocol.Sink

	resetCycles int
	budget      int
	cycle       int

	targetIn         []protocol.Inputs
	targetReady      []bool
	initiatorReady   []bool
	targetBeats      []Beat
	initiatorBeats   []Beat
	targetStalled    []bool
	initiatorStalled []bool
}

// Project returns the project the harness was built from.
func (h *Harness) Project() *stream.Project {
	return h.project
}

// Channels returns the target channels in project order.
func (h *Harness) Channels() []*protocol.Channel {
	return h.channels
}

// Sinks returns the initiator sinks in project order.
func (h *Harness) Sinks() []*protocol.Sink {
	return h.sinks
}

// StallGenerator returns the shared stall generator.
func (h *Harness) StallGenerator() *protocol.StallGenerator {
	return h.stall
}

// Budget returns the number of cycles a run lasts, reset included.
func (h *Harness) Budget() int {
	return h.budget
}

// ResetCycles returns the number of cycles reset is held.
func (h *Harness) ResetCycles() int {
	return h.resetCycles
}

// Cycle returns the number of cycles simulated so far.
func (h *Harness) Cycle() int {
	return h.cycle
}

// Run simulates the whole cycle budget.
func (h *Harness) Run() error {
	h.TickNow()
	return h.engine.Run()
}

// Tick simulates one cycle.
func (h *Harness) Tick() bool {
	if h.cycle >= h.budget {
		return false
	}

	if h.cycle < h.resetCycles {
		h.resetCycle()
	} else {
		h.activeCycle()
	}

	h.cycle++

	return h.cycle < h.budget
}

func (h *Harness) resetCycle() {
	h.device.Reset()
	for _, c := range h.channels {
		c.Commit(protocol.Inputs{Reset: true})
	}
	h.stall.Reset()

	clear(h.targetBeats)
	clear(h.initiatorBeats)
	clear(h.targetStalled)
	clear(h.initiatorStalled)

	h.invokeCycleHook(true, h.stall.Counter())
}

func (h *Harness) activeCycle() {
	counter := h.stall.Counter()

	for t := range h.channels {
		h.targetStalled[t] = h.stall.NextStall(t, protocol.TargetRole)
	}

	for i := range h.sinks {
		h.initiatorStalled[i] = h.stall.NextStall(i, protocol.InitiatorRole)
		h.initiatorReady[i] = !h.initiatorStalled[i]
	}

	h.device.EvalReady(h.initiatorReady, h.targetReady)

	for t, c := range h.channels {
		h.targetIn[t] = protocol.Inputs{
			MemValid: !h.targetStalled[t],
			Ready:    h.targetReady[t],
		}
		out := c.Eval(h.targetIn[t])
		h.targetBeats[t] = Beat{
			Valid: out.Valid,
			Ready: h.targetReady[t],
			Data:  c.Data(),
		}
	}

	for i := range h.sinks {
		h.initiatorBeats[i] = Beat{Ready: h.initiatorReady[i]}
	}

	h.device.EvalOutput(h.targetBeats, h.initiatorBeats)

	h.commit()
	h.invokeCycleHook(false, counter)
}

func (h *Harness) commit() {
	for t, c := range h.channels {
		if h.targetBeats[t].Fire() {
			h.invokeAcceptHook(stream.Target, t, c.Name(), c.Width(),
				h.targetBeats[t].Data)
		}
		c.Commit(h.targetIn[t])
	}

	for i, s := range h.sinks {
		b := h.initiatorBeats[i]
		if s.OnCycle(b.Ready, b.Valid, b.Data) {
			h.invokeAcceptHook(stream.Initiator, i, s.Name(), s.Width(), b.Data)
		}
	}

	h.device.Commit(h.targetBeats, h.initiatorBeats)
	h.stall.Tick()
}

func (h *Harness) invokeAcceptHook(
	dir stream.Direction,
	index int,
	name string,
	width int,
	word uint64,
) {
	if h.NumHooks() == 0 {
		return
	}

	h.InvokeHook(hooking.HookCtx{
		Domain: h,
		Pos:    HookPosAccept,
		Item: Transfer{
			Cycle:     h.cycle,
			Direction: dir,
			Index:     index,
			Channel:   name,
			Width:     width,
			Word:      word,
		},
	})
}

func (h *Harness) invokeCycleHook(reset bool, counter uint32) {
	if h.NumHooks() == 0 {
		return
	}

	h.InvokeHook(hooking.HookCtx{
		Domain: h,
		Pos:    HookPosCycle,
		Item: CycleRecord{
			Cycle:            h.cycle,
			Reset:            reset,
			Counter:          counter,
			Targets:          append([]Beat(nil), h.targetBeats...),
			Initiators:       append([]Beat(nil), h.initiatorBeats...),
			TargetStalled:    append([]bool(nil), h.targetStalled...),
			InitiatorStalled: append([]bool(nil), h.initiatorStalled...),
		},
	})
}

// WriteCaptures writes the record of every sink to dir as <name>.mif.
func (h *Harness) WriteCaptures(dir string) error {
	for _, s := range h.sinks {
		path := filepath.Join(dir, s.Name()+".mif")
		if err := image.WriteFile(path, s.Image()); err != nil {
			return err
		}
	}

	return nil
}
