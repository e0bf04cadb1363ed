package inspect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/params"
	"github.com/soroban-kit/tracedbg/trace"
)

func sampledTrace() *trace.Trace {
	return trace.New([]core.Event{
		&core.FunctionEntry{Function: "outer"},
		&core.InstructionExecuted{CatalogIndex: 0},
		&core.ResourceSample{CPU: 100, Memory: 4096},
		&core.FunctionEntry{Function: "inner", CallDepth: 1},
		&core.InstructionExecuted{CatalogIndex: 2},
		&core.InstructionExecuted{CatalogIndex: 3},
		&core.ResourceSample{CPU: 250, Memory: 8192},
		&core.FunctionExit{Function: "inner", CallDepth: 1},
		&core.InstructionExecuted{CatalogIndex: 1},
		&core.FunctionExit{Function: "outer"},
	}, core.StatusOk)
}

func TestBudgetAt(t *testing.T) {
	tr := sampledTrace()
	limits := params.Budget{CPULimit: 1000, MemLimit: 16384}

	info := BudgetAt(tr, 4, limits)
	require.Equal(t, uint64(100), info.CPUInstructions)
	require.Equal(t, uint64(4096), info.MemoryBytes)

	info = BudgetAt(tr, tr.Len()-1, limits)
	require.Equal(t, uint64(250), info.CPUInstructions)
	require.Equal(t, uint64(8192), info.MemoryBytes)

	// Before the first sample the meters read zero.
	info = BudgetAt(tr, 1, limits)
	require.Zero(t, info.CPUInstructions)
	require.Zero(t, info.MemoryBytes)
}

func TestBudgetPercentages(t *testing.T) {
	info := BudgetInfo{CPUInstructions: 250, CPULimit: 1000, MemoryBytes: 8192, MemoryLimit: 16384}
	require.InDelta(t, 25.0, info.CPUPercentage(), 0.001)
	require.InDelta(t, 50.0, info.MemoryPercentage(), 0.001)

	require.Zero(t, BudgetInfo{}.CPUPercentage())
	require.Zero(t, BudgetInfo{}.MemoryPercentage())
}

func TestCheckThresholds(t *testing.T) {
	quiet := BudgetInfo{CPUInstructions: 100, CPULimit: 1000, MemoryBytes: 100, MemoryLimit: 1000}
	require.Empty(t, CheckThresholds(quiet))

	hot := BudgetInfo{CPUInstructions: 960, CPULimit: 1000, MemoryBytes: 720, MemoryLimit: 1000}
	warnings := CheckThresholds(hot)
	require.Len(t, warnings, 2)

	require.Equal(t, "cpu", warnings[0].Resource)
	require.Equal(t, SeverityCritical, warnings[0].Severity)
	require.Equal(t, "memory", warnings[1].Resource)
	require.Equal(t, SeverityYellow, warnings[1].Severity)
}

func TestSeverityGrading(t *testing.T) {
	cases := []struct {
		pct  float64
		want Severity
	}{
		{70, SeverityYellow},
		{89.9, SeverityYellow},
		{90, SeverityRed},
		{95, SeverityCritical},
	}
	for _, c := range cases {
		w, ok := grade("cpu", c.pct, "")
		require.True(t, ok, "pct %v", c.pct)
		require.Equal(t, c.want, w.Severity, "pct %v", c.pct)
	}
	_, ok := grade("cpu", 69.9, "")
	require.False(t, ok)
}

func TestInstructionProfile(t *testing.T) {
	p := Instructions(sampledTrace())

	require.Equal(t, uint64(4), p.Total)
	require.Len(t, p.Functions, 2)
	require.Equal(t, FunctionCount{Function: "inner", Count: 2}, p.Functions[0])
	require.Equal(t, FunctionCount{Function: "outer", Count: 2}, p.Functions[1])
}

func TestInstructionProfileEmpty(t *testing.T) {
	tr := trace.New(nil, core.StatusOk)
	p := Instructions(tr)
	require.Zero(t, p.Total)
	require.Empty(t, p.Functions)
}
