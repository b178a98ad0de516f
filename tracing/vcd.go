// Package tracing dumps harness runs as waveforms.
package tracing

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/rvbench/harness"
	"github.com/sarchlab/rvbench/hooking"
	"github.com/sarchlab/rvbench/stream"
	"github.com/sarchlab/rvbench/timing"
)

type signal struct {
	name  string
	width int
	id    string
	last  uint64
	known bool
}

type channelSignals struct {
	data, valid, ready, stall *signal
}

// VCDTracer is a hook that writes every harness cycle to a value change dump
// file, one clock period per cycle.
type VCDTracer struct {
	path    string
	project *stream.Project
	freq    timing.FreqInHz

	file *os.File
	w    *bufio.Writer

	signals    []*signal
	clk, rst   *signal
	counter    *signal
	targets    []channelSignals
	initiators []channelSignals
}

// NewVCDTracer creates a tracer for a project. The dump goes to path+".vcd";
// an empty path picks a unique name.
func NewVCDTracer(path string, p *stream.Project) *VCDTracer {
	return &VCDTracer{
		path:    path,
		project: p,
		freq:    100 * timing.MHz,
	}
}

// WithFreq sets the clock frequency used for timestamps.
func (t *VCDTracer) WithFreq(f timing.FreqInHz) *VCDTracer {
	t.freq = f
	return t
}

// Path returns the dump file name.
func (t *VCDTracer) Path() string {
	return t.path + ".vcd"
}

// Init creates the dump file and writes the header. The file is flushed and
// closed at exit if Close is not called before.
func (t *VCDTracer) Init() error {
	if t.path == "" {
		t.path = "rvbench_wave_" + xid.New().String()
	}

	file, err := os.Create(t.Path())
	if err != nil {
		return errors.Wrap(err, "creating waveform")
	}

	t.file = file
	t.w = bufio.NewWriter(file)
	t.declare()
	t.writeHeader()

	atexit.Register(func() {
		if err := t.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing %s: %v\n", t.Path(), err)
		}
	})

	return nil
}

func (t *VCDTracer) newSignal(name string, width int) *signal {
	s := &signal{name: name, width: width, id: vcdID(len(t.signals))}
	t.signals = append(t.signals, s)

	return s
}

func (t *VCDTracer) declare() {
	t.clk = t.newSignal("i_clk", 1)
	t.rst = t.newSignal("i_rst_p", 1)
	t.counter = t.newSignal("counter", 32)

	for _, d := range t.project.Targets {
		t.targets = append(t.targets, t.channel(d))
	}

	for _, d := range t.project.Initiators {
		t.initiators = append(t.initiators, t.channel(d))
	}
}

func (t *VCDTracer) channel(d stream.Descriptor) channelSignals {
	return channelSignals{
		data:  t.newSignal(d.Name, d.Width),
		valid: t.newSignal(d.Valid, 1),
		ready: t.newSignal(d.Ready, 1),
		stall: t.newSignal("stall", 1),
	}
}

func (t *VCDTracer) writeHeader() {
	fmt.Fprintf(t.w, "$version rvbench $end\n")
	fmt.Fprintf(t.w, "$timescale 1ps $end\n")
	fmt.Fprintf(t.w, "$scope module top_tb $end\n")

	for _, s := range t.signals[:3] {
		t.writeVar(s)
	}

	t.writeScopes("t", t.targets)
	t.writeScopes("i", t.initiators)

	fmt.Fprintf(t.w, "$upscope $end\n")
	fmt.Fprintf(t.w, "$enddefinitions $end\n")
}

func (t *VCDTracer) writeScopes(prefix string, channels []channelSignals) {
	for i, c := range channels {
		fmt.Fprintf(t.w, "$scope module %s%d_%s $end\n", prefix, i, c.data.name)
		t.writeVar(c.data)
		t.writeVar(c.valid)
		t.writeVar(c.ready)
		t.writeVar(c.stall)
		fmt.Fprintf(t.w, "$upscope $end\n")
	}
}

func (t *VCDTracer) writeVar(s *signal) {
	fmt.Fprintf(t.w, "$var wire %d %s %s $end\n", s.width, s.id, s.name)
}

// Func dumps cycle records and ignores other hook positions.
func (t *VCDTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != harness.HookPosCycle || t.w == nil {
		return
	}

	rec, ok := ctx.Item.(harness.CycleRecord)
	if !ok {
		return
	}

	half := t.freq.HalfPeriodPS()
	rise := uint64(rec.Cycle) * 2 * half

	fmt.Fprintf(t.w, "#%d\n", rise)
	t.change(t.clk, 1)
	t.change(t.rst, boolBit(rec.Reset))
	t.change(t.counter, uint64(rec.Counter))
	t.changeChannels(t.targets, rec.Targets, rec.TargetStalled)
	t.changeChannels(t.initiators, rec.Initiators, rec.InitiatorStalled)

	fmt.Fprintf(t.w, "#%d\n", rise+half)
	t.change(t.clk, 0)
}

func (t *VCDTracer) changeChannels(
	channels []channelSignals,
	beats []harness.Beat,
	stalled []bool,
) {
	for i, c := range channels {
		var b harness.Beat
		if i < len(beats) {
			b = beats[i]
		}

		stall := false
		if i < len(stalled) {
			stall = stalled[i]
		}

		t.change(c.data, b.Data)
		t.change(c.valid, boolBit(b.Valid))
		t.change(c.ready, boolBit(b.Ready))
		t.change(c.stall, boolBit(stall))
	}
}

func (t *VCDTracer) change(s *signal, v uint64) {
	if s.known && s.last == v {
		return
	}

	s.known = true
	s.last = v

	if s.width == 1 {
		fmt.Fprintf(t.w, "%d%s\n", v, s.id)
		return
	}

	fmt.Fprintf(t.w, "b%s %s\n", strconv.FormatUint(v, 2), s.id)
}

// Close flushes and closes the dump file. Closing twice does nothing.
func (t *VCDTracer) Close() error {
	if t.file == nil {
		return nil
	}

	err := t.w.Flush()
	if closeErr := t.file.Close(); err == nil {
		err = closeErr
	}

	t.file = nil
	t.w = nil

	return err
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

// vcdID encodes n with the 94 printable ASCII characters VCD allows in
// identifiers.
func vcdID(n int) string {
	const first, count = '!', 94

	id := []byte{byte(first + n%count)}
	for n /= count; n > 0; n /= count {
		n--
		id = append(id, byte(first+n%count))
	}

	return string(id)
}
