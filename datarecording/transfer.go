package datarecording

import (
	"fmt"
	"strings"

	"github.com/sarchlab/rvbench/harness"
	"github.com/sarchlab/rvbench/hooking"
)

// TransferEntry is one row of the transfers table.
type TransferEntry struct {
	Cycle        int
	Direction    string
	ChannelIndex int
	Channel      string
	Width        int
	// Word is hex encoded; SQLite integers cannot hold every 64-bit word.
	Word string
}

// CycleEntry is one row of the cycles table.
type CycleEntry struct {
	Cycle   int
	Reset   bool
	Counter int64
	// TargetValid and the other bit strings hold one character per channel,
	// in project order.
	TargetValid      string
	TargetReady      string
	TargetStalled    string
	InitiatorValid   string
	InitiatorReady   string
	InitiatorStalled string
}

// Table names.
const (
	TransferTable = "transfers"
	CycleTable    = "cycles"
)

// TransferRecorder is a hook that stores accepted words and, optionally,
// every cycle.
type TransferRecorder struct {
	recorder     DataRecorder
	recordCycles bool
}

// NewTransferRecorder creates the tables and returns the hook.
func NewTransferRecorder(r DataRecorder, recordCycles bool) *TransferRecorder {
	r.CreateTable(TransferTable, TransferEntry{})
	if recordCycles {
		r.CreateTable(CycleTable, CycleEntry{})
	}

	return &TransferRecorder{recorder: r, recordCycles: recordCycles}
}

// Func records accept and cycle hooks.
func (h *TransferRecorder) Func(ctx hooking.HookCtx) {
	switch item := ctx.Item.(type) {
	case harness.Transfer:
		if ctx.Pos != harness.HookPosAccept {
			return
		}

		h.recorder.InsertData(TransferTable, TransferEntry{
			Cycle:        item.Cycle,
			Direction:    item.Direction.String(),
			ChannelIndex: item.Index,
			Channel:      item.Channel,
			Width:        item.Width,
			Word:         fmt.Sprintf("%0*x", (item.Width+3)/4, item.Word),
		})
	case harness.CycleRecord:
		if ctx.Pos != harness.HookPosCycle || !h.recordCycles {
			return
		}

		h.recorder.InsertData(CycleTable, CycleEntry{
			Cycle:            item.Cycle,
			Reset:            item.Reset,
			Counter:          int64(item.Counter),
			TargetValid:      beatBits(item.Targets, func(b harness.Beat) bool { return b.Valid }),
			TargetReady:      beatBits(item.Targets, func(b harness.Beat) bool { return b.Ready }),
			TargetStalled:    bits(item.TargetStalled),
			InitiatorValid:   beatBits(item.Initiators, func(b harness.Beat) bool { return b.Valid }),
			InitiatorReady:   beatBits(item.Initiators, func(b harness.Beat) bool { return b.Ready }),
			InitiatorStalled: bits(item.InitiatorStalled),
		})
	}
}

func beatBits(beats []harness.Beat, pick func(harness.Beat) bool) string {
	flags := make([]bool, len(beats))
	for i, b := range beats {
		flags[i] = pick(b)
	}

	return bits(flags)
}

func bits(flags []bool) string {
	var sb strings.Builder
	for _, f := range flags {
		if f {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}
