package engine

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/soroban-kit/tracedbg/breakpoint"
	"github.com/soroban-kit/tracedbg/catalog"
	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/cursor"
	"github.com/soroban-kit/tracedbg/trace"
)

// Session is one recorded invocation plus the cursor into it. All
// methods are synchronous and operate purely in memory; after a failed
// recording the last reachable position still steps normally and
// anything past it reports a boundary.
type Session struct {
	id     string
	module string // keccak hash of the module bytes
	fn     string

	cat     *catalog.Catalog // nil in degraded sessions
	tr      *trace.Trace
	cur     *cursor.Cursor
	stepper *cursor.Stepper
	bps     *breakpoint.Manager
	log     log.Logger
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Function returns the invoked entry function name.
func (s *Session) Function() string {
	return s.fn
}

// ModuleHash returns the hex keccak hash of the debugged module.
func (s *Session) ModuleHash() string {
	return s.module
}

// TerminalStatus reports how the recorded execution ended. It is
// reported once here; stepping never fails because of it.
func (s *Session) TerminalStatus() core.TerminalStatus {
	return s.tr.TerminalStatus()
}

// Catalog returns the decoded instruction catalog, or nil when the
// module could not be decoded.
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat
}

// Trace returns the recorded trace.
func (s *Session) Trace() *trace.Trace {
	return s.tr
}

// Position returns the cursor's current event index.
func (s *Session) Position() int {
	return s.cur.Position()
}

// Current reports the position, function, depth and instruction at the
// cursor without moving it.
func (s *Session) Current() core.StepOutcome {
	return s.stepper.Outcome(s.cur)
}

// Step advances the cursor in the given mode.
func (s *Session) Step(mode core.StepMode) core.StepOutcome {
	out := s.stepper.Step(s.cur, mode)
	s.log.Debug("step", "mode", mode, "moved", out.Moved,
		"position", out.Position, "function", out.Function, "depth", out.CallDepth)
	return out
}

// ContinueToNextBreakpoint scans forward from the current position for
// the next entry into a registered function and jumps there. Without a
// remaining match the cursor stays put and the outcome reports a
// boundary.
func (s *Session) ContinueToNextBreakpoint() core.StepOutcome {
	pos, ok := s.bps.NextMatch(s.tr, s.cur.Position())
	if !ok {
		return s.stepper.Outcome(s.cur)
	}
	out := s.stepper.JumpForward(s.cur, pos)
	s.log.Debug("continue", "position", out.Position, "function", out.Function)
	return out
}

// CurrentCallStack reconstructs the call stack at the cursor, outermost
// frame first.
func (s *Session) CurrentCallStack() []core.CallFrame {
	return s.tr.CallStackAt(s.cur.Position())
}

// TraceSlice returns the recorded events in [from, to) for bulk display
// or export.
func (s *Session) TraceSlice(from, to int) []core.Event {
	return s.tr.Slice(from, to)
}

// RegisterBreakpoint adds a function-name breakpoint; idempotent.
func (s *Session) RegisterBreakpoint(name string) {
	s.bps.Register(name)
}

// ClearBreakpoint removes a function-name breakpoint; idempotent.
func (s *Session) ClearBreakpoint(name string) {
	s.bps.Clear(name)
}

// ListBreakpoints returns the registered names in insertion order.
func (s *Session) ListBreakpoints() []string {
	return s.bps.List()
}
