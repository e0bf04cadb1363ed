package host

import (
	"time"

	"github.com/soroban-kit/tracedbg/core"
)

// Tracer is used to collect execution events from a simulated contract
// invocation. CaptureInstruction is called for each instruction the
// walk visits. Once a fault or budget capture arrives the stream is
// terminal and further captures are discarded.
type Tracer interface {
	CaptureEnter(function string, depth uint32, args string)
	CaptureExit(function string, depth uint32, result string, elapsed time.Duration)
	CaptureInstruction(catalogIndex uint32)
	CaptureSample(cpu, memory uint64)
	CaptureFault(message string)
	CaptureBudgetExhausted()
}

// eventCollector is the Tracer that backs Simulator runs. It appends
// one event per capture, in capture order.
type eventCollector struct {
	events []core.Event
	status core.TerminalStatus
	sealed bool
}

func newEventCollector() *eventCollector {
	return &eventCollector{status: core.StatusOk}
}

func (ec *eventCollector) CaptureEnter(function string, depth uint32, args string) {
	if ec.sealed {
		return
	}
	ec.events = append(ec.events, &core.FunctionEntry{
		Function: function, CallDepth: depth, Args: args,
	})
}

func (ec *eventCollector) CaptureExit(function string, depth uint32, result string, elapsed time.Duration) {
	if ec.sealed {
		return
	}
	ec.events = append(ec.events, &core.FunctionExit{
		Function: function, CallDepth: depth, Result: result, Duration: elapsed,
	})
}

func (ec *eventCollector) CaptureInstruction(catalogIndex uint32) {
	if ec.sealed {
		return
	}
	ec.events = append(ec.events, &core.InstructionExecuted{CatalogIndex: catalogIndex})
}

func (ec *eventCollector) CaptureSample(cpu, memory uint64) {
	if ec.sealed {
		return
	}
	ec.events = append(ec.events, &core.ResourceSample{CPU: cpu, Memory: memory})
}

func (ec *eventCollector) CaptureFault(message string) {
	if ec.sealed {
		return
	}
	ec.events = append(ec.events, &core.Trapped{Message: message})
	ec.status = core.StatusTrapped
	ec.sealed = true
}

func (ec *eventCollector) CaptureBudgetExhausted() {
	if ec.sealed {
		return
	}
	ec.events = append(ec.events, &core.BudgetExceeded{})
	ec.status = core.StatusBudgetExceeded
	ec.sealed = true
}
