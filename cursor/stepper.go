package cursor

import (
	"github.com/soroban-kit/tracedbg/catalog"
	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/trace"
)

// Stepper applies step-mode algorithms to a cursor. It reads only the
// immutable trace and catalog; all mutation happens on the cursor.
type Stepper struct {
	t   *trace.Trace
	cat *catalog.Catalog // nil when static decoding failed
}

// NewStepper binds a stepper to a trace and an optional catalog.
func NewStepper(t *trace.Trace, cat *catalog.Catalog) *Stepper {
	return &Stepper{t: t, cat: cat}
}

// Step advances the cursor according to mode. Every successful forward
// step pushes exactly one history entry; Back pops exactly one.
func (s *Stepper) Step(c *Cursor, mode core.StepMode) core.StepOutcome {
	c.mode = mode
	var target int
	var ok bool

	switch mode {
	case core.StepInto:
		target, ok = s.into(c.position)
	case core.StepOver:
		target, ok = s.over(c.position)
	case core.StepOut:
		target, ok = s.out(c.position)
	case core.StepBlock:
		target, ok = s.block(c.position)
	case core.StepBack:
		if pos, popped := c.pop(); popped {
			c.position = pos
			return s.outcome(c, true)
		}
		return s.outcome(c, false)
	default:
		return s.outcome(c, false)
	}

	if !ok {
		return s.outcome(c, false)
	}
	c.push()
	c.position = target
	return s.outcome(c, true)
}

// JumpForward moves the cursor directly to target, recording a single
// history entry. It backs continue-to-breakpoint moves.
func (s *Stepper) JumpForward(c *Cursor, target int) core.StepOutcome {
	if target <= c.position || target >= s.t.Len() {
		return s.outcome(c, false)
	}
	c.push()
	c.position = target
	return s.outcome(c, true)
}

// Outcome reports the current cursor position without moving, for
// callers that need the initial snapshot view.
func (s *Stepper) Outcome(c *Cursor) core.StepOutcome {
	return s.outcome(c, false)
}

func (s *Stepper) into(pos int) (int, bool) {
	if pos+1 >= s.t.Len() {
		return 0, false
	}
	return pos + 1, true
}

// over skips the entire subtree of the function entered at pos, landing
// on the matching exit. On any other event it degrades to into.
func (s *Stepper) over(pos int) (int, bool) {
	if _, isEntry := s.t.Event(pos).(*core.FunctionEntry); !isEntry {
		return s.into(pos)
	}
	balance := 0
	for i := pos; i < s.t.Len(); i++ {
		switch s.t.Event(i).(type) {
		case *core.FunctionEntry:
			balance++
		case *core.FunctionExit:
			balance--
			if balance == 0 {
				return i, true
			}
		}
	}
	// The matching exit never arrived: the trace was cut short inside
	// the callee.
	return 0, false
}

// out lands on the event immediately after the exit of the enclosing
// function.
func (s *Stepper) out(pos int) (int, bool) {
	issueDepth := s.t.DepthAt(pos)
	if issueDepth == 0 {
		return 0, false
	}
	for i := pos + 1; i < s.t.Len(); i++ {
		if s.t.DepthAt(i) < issueDepth {
			if i+1 < s.t.Len() {
				return i + 1, true
			}
			return 0, false
		}
	}
	return 0, false
}

// block advances to the next function boundary or control-flow
// instruction, for coarse navigation. Without a catalog only function
// boundaries qualify.
func (s *Stepper) block(pos int) (int, bool) {
	for i := pos + 1; i < s.t.Len(); i++ {
		switch ev := s.t.Event(i).(type) {
		case *core.FunctionEntry, *core.FunctionExit:
			return i, true
		case *core.InstructionExecuted:
			if s.cat == nil {
				continue
			}
			if ins := s.cat.Instruction(ev.CatalogIndex); ins != nil && ins.IsControlFlow() {
				return i, true
			}
		}
	}
	return 0, false
}

func (s *Stepper) outcome(c *Cursor, moved bool) core.StepOutcome {
	out := core.StepOutcome{
		Moved:     moved,
		Position:  c.position,
		Function:  s.t.FunctionAt(c.position),
		CallDepth: c.CallDepth(),
	}
	if ev, ok := s.t.Event(c.position).(*core.InstructionExecuted); ok && s.cat != nil {
		out.Instruction = s.cat.Instruction(ev.CatalogIndex)
	}
	return out
}
