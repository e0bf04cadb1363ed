// Package trace holds the recorded execution trace: the immutable,
// ordered event sequence that every stepping and inspection operation
// reads from. A trace is built once per invocation and never mutated,
// so it may be read concurrently without locking.
package trace

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/soroban-kit/tracedbg/core"
)

// Trace is one recorded contract invocation. Event indices are stable
// for the lifetime of the trace.
type Trace struct {
	events []core.Event
	depths []uint32
	status core.TerminalStatus
}

// New builds a trace from the host's event stream. The call-depth
// prefix is computed once here so depth queries during stepping are
// constant time.
func New(events []core.Event, status core.TerminalStatus) *Trace {
	t := &Trace{
		events: events,
		depths: make([]uint32, len(events)),
		status: status,
	}

	var depth uint32
	for i, ev := range events {
		switch ev.(type) {
		case *core.FunctionEntry:
			depth++
		case *core.FunctionExit:
			if depth == 0 {
				// Host emitted an exit with no matching entry.
				log.Warn("unbalanced function exit in trace", "position", i)
			} else {
				depth--
			}
		}
		t.depths[i] = depth
	}

	if depth != 0 && status == core.StatusOk {
		// Balanced entry/exit pairs are only guaranteed for normal
		// termination.
		t.status = core.StatusTruncated
	}
	return t
}

// Len returns the number of recorded events.
func (t *Trace) Len() int {
	return len(t.events)
}

// Event returns the event at the given position, or nil when out of
// range.
func (t *Trace) Event(pos int) core.Event {
	if pos < 0 || pos >= len(t.events) {
		return nil
	}
	return t.events[pos]
}

// DepthAt returns the number of unmatched FunctionEntry events at or
// before pos.
func (t *Trace) DepthAt(pos int) uint32 {
	if pos < 0 || pos >= len(t.depths) {
		return 0
	}
	return t.depths[pos]
}

// TerminalStatus reports how the recorded execution ended.
func (t *Trace) TerminalStatus() core.TerminalStatus {
	return t.status
}

// Slice returns the events in [from, to), clamped to the trace bounds,
// for bulk display and export.
func (t *Trace) Slice(from, to int) []core.Event {
	if from < 0 {
		from = 0
	}
	if to > len(t.events) {
		to = len(t.events)
	}
	if from >= to {
		return nil
	}
	out := make([]core.Event, to-from)
	copy(out, t.events[from:to])
	return out
}

// CallStackAt reconstructs the call stack as of pos by replaying
// entries and exits up to and including it.
func (t *Trace) CallStackAt(pos int) []core.CallFrame {
	if pos >= len(t.events) {
		pos = len(t.events) - 1
	}
	var stack []core.CallFrame
	for i := 0; i <= pos; i++ {
		switch ev := t.events[i].(type) {
		case *core.FunctionEntry:
			stack = append(stack, core.CallFrame{
				Function:  ev.Function,
				EnteredAt: i,
				Args:      ev.Args,
			})
		case *core.FunctionExit:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return stack
}

// FunctionAt returns the name of the innermost function open at pos,
// or the empty string before the first entry.
func (t *Trace) FunctionAt(pos int) string {
	stack := t.CallStackAt(pos)
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1].Function
}
