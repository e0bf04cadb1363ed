package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/params"
	"github.com/soroban-kit/tracedbg/trace"
)

// answerModule exports "answer" returning the constant 7.
func answerModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
		0x03, 0x02, 0x01, 0x00,
		0x07, 0x0a, 0x01, 0x06, 'a', 'n', 's', 'w', 'e', 'r', 0x00, 0x00,
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x07, 0x0b,
	}
}

// callModule exports "outer" (calls "inner") and "inner" (returns 42).
func callModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
		0x03, 0x03, 0x02, 0x00, 0x00,
		0x07, 0x11, 0x02,
		0x05, 'o', 'u', 't', 'e', 'r', 0x00, 0x00,
		0x05, 'i', 'n', 'n', 'e', 'r', 0x00, 0x01,
		0x0a, 0x0b, 0x02,
		0x04, 0x00, 0x10, 0x01, 0x0b,
		0x04, 0x00, 0x41, 0x2a, 0x0b,
	}
}

// trapModule exports "boom" which executes unreachable.
func trapModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
		0x03, 0x02, 0x01, 0x00,
		0x07, 0x08, 0x01, 0x04, 'b', 'o', 'o', 'm', 0x00, 0x00,
		0x0a, 0x05, 0x01, 0x03, 0x00, 0x00, 0x0b, // unreachable; end
	}
}

// hostCallModule imports env.storage_has and exports "check" calling it
// with a zero-length key.
func hostCallModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x0c, 0x02,
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
		0x60, 0x00, 0x01, 0x7f,
		0x02, 0x13, 0x01,
		0x03, 'e', 'n', 'v',
		0x0b, 's', 't', 'o', 'r', 'a', 'g', 'e', '_', 'h', 'a', 's',
		0x00, 0x00,
		0x03, 0x02, 0x01, 0x01,
		0x05, 0x03, 0x01, 0x00, 0x01, // one memory page
		0x07, 0x09, 0x01, 0x05, 'c', 'h', 'e', 'c', 'k', 0x00, 0x01,
		0x0a, 0x0a, 0x01, 0x08, 0x00,
		0x41, 0x00, 0x41, 0x00, 0x10, 0x00, 0x0b,
	}
}

func execute(t *testing.T, sim *Simulator, module []byte, function string) trace.Result {
	res, err := sim.Execute(context.Background(), trace.Request{
		Module:   module,
		Function: function,
	})
	require.NoError(t, err)
	return res
}

func TestSimulatorSingleFunction(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())
	res := execute(t, sim, answerModule(), "answer")

	require.Equal(t, core.StatusOk, res.Status)
	require.Len(t, res.Events, 5)

	entry, ok := res.Events[0].(*core.FunctionEntry)
	require.True(t, ok)
	require.Equal(t, "answer", entry.Function)
	require.Equal(t, uint32(0), entry.CallDepth)

	require.IsType(t, &core.InstructionExecuted{}, res.Events[1])
	require.IsType(t, &core.InstructionExecuted{}, res.Events[2])

	exit, ok := res.Events[3].(*core.FunctionExit)
	require.True(t, ok)
	require.Equal(t, "7", exit.Result)

	sample, ok := res.Events[4].(*core.ResourceSample)
	require.True(t, ok)
	require.Equal(t, uint64(2*params.DefaultBudget.CPUPerInstr), sample.CPU)
}

func TestSimulatorNestedCall(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())
	res := execute(t, sim, callModule(), "outer")

	require.Equal(t, core.StatusOk, res.Status)

	var names []string
	for _, ev := range res.Events {
		switch e := ev.(type) {
		case *core.FunctionEntry:
			names = append(names, "enter "+e.Function)
		case *core.FunctionExit:
			names = append(names, "exit "+e.Function)
		}
	}
	require.Equal(t, []string{
		"enter outer", "enter inner", "exit inner", "exit outer",
	}, names)

	exit := res.Events[len(res.Events)-2].(*core.FunctionExit)
	require.Equal(t, "outer", exit.Function)
	require.Equal(t, "42", exit.Result)
}

func TestSimulatorTrap(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())
	res := execute(t, sim, trapModule(), "boom")

	require.Equal(t, core.StatusTrapped, res.Status)

	last, ok := res.Events[len(res.Events)-1].(*core.Trapped)
	require.True(t, ok)
	require.NotEmpty(t, last.Message)

	// The entry stays unbalanced on a trap.
	var exits int
	for _, ev := range res.Events {
		if _, ok := ev.(*core.FunctionExit); ok {
			exits++
		}
	}
	require.Zero(t, exits)
}

func TestSimulatorMalformedModule(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())
	res := execute(t, sim, []byte("not a wasm module"), "run")

	require.Equal(t, core.StatusTrapped, res.Status)
	require.Len(t, res.Events, 2)
	require.IsType(t, &core.FunctionEntry{}, res.Events[0])
	require.IsType(t, &core.Trapped{}, res.Events[1])
}

func TestSimulatorRequestErrors(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())

	_, err := sim.Execute(context.Background(), trace.Request{Function: "run"})
	require.Error(t, err)

	_, err = sim.Execute(context.Background(), trace.Request{
		Module: answerModule(), Function: "missing",
	})
	require.Error(t, err)

	_, err = sim.Execute(context.Background(), trace.Request{
		Module: answerModule(), Function: "answer", Args: "not json",
	})
	require.Error(t, err)
}

func TestSimulatorBudgetExhaustion(t *testing.T) {
	cfg := params.DefaultConfig()
	cfg.Budget.CPULimit = cfg.Budget.CPUPerInstr // one instruction fits

	sim := NewSimulator(cfg)
	res := execute(t, sim, answerModule(), "answer")

	require.Equal(t, core.StatusBudgetExceeded, res.Status)
	require.IsType(t, &core.BudgetExceeded{}, res.Events[len(res.Events)-1])
	require.IsType(t, &core.ResourceSample{}, res.Events[len(res.Events)-2])
}

func TestSimulatorMockShortCircuit(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())
	sim.Mocks().Register("inner", "99")

	res := execute(t, sim, callModule(), "outer")
	require.Equal(t, core.StatusOk, res.Status)

	var innerExit *core.FunctionExit
	var innerInstructions, depth int
	for _, ev := range res.Events {
		switch e := ev.(type) {
		case *core.FunctionEntry:
			depth++
		case *core.FunctionExit:
			if e.Function == "inner" {
				innerExit = e
			}
			depth--
		case *core.InstructionExecuted:
			if depth == 2 {
				innerInstructions++
			}
		}
	}
	require.NotNil(t, innerExit)
	require.Equal(t, "99", innerExit.Result)
	require.Zero(t, innerInstructions)

	calls := sim.Mocks().Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "inner", calls[0].Function)
}

func TestSimulatorHostFunctionCall(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())
	res := execute(t, sim, hostCallModule(), "check")

	require.Equal(t, core.StatusOk, res.Status)

	var sawHostEntry bool
	for _, ev := range res.Events {
		if e, ok := ev.(*core.FunctionEntry); ok && e.Function == "env.storage_has" {
			sawHostEntry = true
		}
	}
	require.True(t, sawHostEntry)

	exit := res.Events[len(res.Events)-2].(*core.FunctionExit)
	require.Equal(t, "check", exit.Function)
	require.Equal(t, "0", exit.Result)
}

func TestSimulatorInitialStorage(t *testing.T) {
	sim := NewSimulator(params.DefaultConfig())
	res, err := sim.Execute(context.Background(), trace.Request{
		Module:         answerModule(),
		Function:       "answer",
		InitialStorage: map[string]string{"counter": "5"},
	})
	require.NoError(t, err)
	require.Equal(t, core.StatusOk, res.Status)
}
