package harness

import (
	"log"

	"github.com/sarchlab/rvbench/hooking"
)

// LogHook prints one line per accepted word.
type LogHook struct {
	*log.Logger
}

// NewLogHook creates a LogHook that writes to logger.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{Logger: logger}
}

// Func logs transfers and ignores other hook positions.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosAccept {
		return
	}

	t, ok := ctx.Item.(Transfer)
	if !ok {
		return
	}

	h.Printf("cycle %d %s %s[%d] %0*x",
		t.Cycle, t.Direction, t.Channel, t.Index, (t.Width+3)/4, t.Word)
}
