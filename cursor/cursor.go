// Package cursor implements the mutable read position into a recorded
// trace and the step-mode algorithms that move it. Stepping never
// re-executes anything; backward steps are pure pointer restores, which
// is what makes time travel safe and cheap.
package cursor

import (
	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/params"
	"github.com/soroban-kit/tracedbg/trace"
)

// Cursor is the only mutable state of a debugging session. It must be
// exclusively owned by its session; concurrent step commands are a
// caller error.
type Cursor struct {
	t        *trace.Trace
	position int
	history  []int
	capacity int
	mode     core.StepMode
}

// New places a cursor at pos within the trace. capacity bounds the
// back-step history; zero or negative selects the default.
func New(t *trace.Trace, pos, capacity int) *Cursor {
	if capacity <= 0 {
		capacity = params.DefaultHistoryCapacity
	}
	if pos < 0 {
		pos = 0
	}
	if max := t.Len() - 1; pos > max && max >= 0 {
		pos = max
	}
	return &Cursor{t: t, position: pos, capacity: capacity}
}

// Position returns the current event index.
func (c *Cursor) Position() int {
	return c.position
}

// CallDepth returns the number of unmatched function entries at or
// before the current position.
func (c *Cursor) CallDepth() uint32 {
	return c.t.DepthAt(c.position)
}

// Mode returns the step mode of the most recent step command.
func (c *Cursor) Mode() core.StepMode {
	return c.mode
}

// HistoryLen returns the number of positions available to Back.
func (c *Cursor) HistoryLen() int {
	return len(c.history)
}

// History returns a copy of the recorded positions, oldest first.
func (c *Cursor) History() []int {
	out := make([]int, len(c.history))
	copy(out, c.history)
	return out
}

// push records the current position before a forward move. Once the
// history is full the oldest entry is dropped; stepping back past the
// capacity boundary reports a boundary instead of growing memory.
func (c *Cursor) push() {
	if len(c.history) >= c.capacity {
		copy(c.history, c.history[1:])
		c.history = c.history[:len(c.history)-1]
	}
	c.history = append(c.history, c.position)
}

// pop restores the most recent recorded position.
func (c *Cursor) pop() (int, bool) {
	if len(c.history) == 0 {
		return 0, false
	}
	p := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	return p, true
}

// Restore places the cursor at an explicit state, used when reviving a
// session snapshot. The history is truncated to capacity, oldest
// entries first.
func (c *Cursor) Restore(pos int, history []int, mode core.StepMode) {
	if pos < 0 {
		pos = 0
	}
	if max := c.t.Len() - 1; pos > max && max >= 0 {
		pos = max
	}
	c.position = pos
	c.history = append(c.history[:0], history...)
	if len(c.history) > c.capacity {
		c.history = c.history[len(c.history)-c.capacity:]
	}
	c.mode = mode
}
