package core

import (
	"fmt"
	"time"
)

// FunctionID identifies a function within a decoded module. Imported
// functions occupy the low indices, exactly as in the wasm function
// index space.
type FunctionID uint32

// Instruction is one decoded wasm instruction. Index is global across
// the whole catalog, dense and contiguous. ByteOffset is relative to
// the start of the owning function body.
type Instruction struct {
	Index      uint32
	Function   FunctionID
	ByteOffset uint32
	Mnemonic   string
	Operands   string
}

func (ins *Instruction) String() string {
	if ins.Operands == "" {
		return fmt.Sprintf("%08x: %s", ins.ByteOffset, ins.Mnemonic)
	}
	return fmt.Sprintf("%08x: %s %s", ins.ByteOffset, ins.Mnemonic, ins.Operands)
}

// IsControlFlow reports whether the instruction can redirect execution.
// Block stepping pauses on these.
func (ins *Instruction) IsControlFlow() bool {
	switch ins.Mnemonic {
	case "br", "br_if", "br_table", "return", "call", "call_indirect",
		"if", "else", "end", "block", "loop":
		return true
	}
	return false
}

// IsCall reports whether the instruction transfers control into another
// function.
func (ins *Instruction) IsCall() bool {
	return ins.Mnemonic == "call" || ins.Mnemonic == "call_indirect"
}

// FunctionRange is the half-open catalog index interval [Start, End)
// owned by one function. Every instruction maps into exactly one range.
type FunctionRange struct {
	Function FunctionID
	Name     string
	Start    uint32
	End      uint32
}

// Contains reports whether the catalog index falls inside the range.
func (r *FunctionRange) Contains(index uint32) bool {
	return index >= r.Start && index < r.End
}

// Event is one element of the raw execution trace. The set of variants
// is fixed; collaborators on the far side of a serialization boundary
// consume the same tagged variants rather than open-ended callbacks.
type Event interface {
	event()
}

// FunctionEntry marks the invocation of a contract function.
// CallDepth is zero for the outermost invocation.
type FunctionEntry struct {
	Function  string
	CallDepth uint32
	Args      string
}

// FunctionExit marks the return from a contract function. CallDepth
// matches the corresponding FunctionEntry.
type FunctionExit struct {
	Function  string
	CallDepth uint32
	Result    string
	Duration  time.Duration
}

// InstructionExecuted marks execution of the catalog instruction at
// CatalogIndex.
type InstructionExecuted struct {
	CatalogIndex uint32
}

// ResourceSample carries the resource meter readings at the point the
// sample was taken. The engine stores samples; it never interprets
// budget policy.
type ResourceSample struct {
	CPU    uint64
	Memory uint64
}

// Trapped is the terminal event of an execution that hit a trap.
type Trapped struct {
	Message string
}

// BudgetExceeded is the terminal event of an execution that ran out of
// resource budget.
type BudgetExceeded struct{}

func (*FunctionEntry) event()       {}
func (*FunctionExit) event()        {}
func (*InstructionExecuted) event() {}
func (*ResourceSample) event()      {}
func (*Trapped) event()             {}
func (*BudgetExceeded) event()      {}

// TerminalStatus describes how a recorded execution ended.
type TerminalStatus uint8

const (
	StatusOk TerminalStatus = iota
	StatusTrapped
	StatusBudgetExceeded
	StatusTruncated
)

func (s TerminalStatus) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusTrapped:
		return "trapped"
	case StatusBudgetExceeded:
		return "budget exceeded"
	case StatusTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("terminal status %d", s)
	}
}

// StepMode selects the cursor advancement algorithm.
type StepMode uint8

const (
	StepInto StepMode = iota
	StepOver
	StepOut
	StepBlock
	StepBack
)

func (m StepMode) String() string {
	switch m {
	case StepInto:
		return "into"
	case StepOver:
		return "over"
	case StepOut:
		return "out"
	case StepBlock:
		return "block"
	case StepBack:
		return "back"
	default:
		return fmt.Sprintf("step mode %d", m)
	}
}

// StepOutcome reports the result of one stepping command. Moved is
// false when the cursor hit a trace boundary (or exhausted history for
// backward steps); in that case the remaining fields describe the
// unchanged position.
type StepOutcome struct {
	Moved       bool
	Position    int
	Function    string
	CallDepth   uint32
	Instruction *Instruction
}

// CallFrame is one reconstructed frame of the call stack at a trace
// position.
type CallFrame struct {
	Function  string
	EnteredAt int
	Args      string
}
