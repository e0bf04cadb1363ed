package inspect

import (
	"sort"

	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/trace"
)

// FunctionCount is the number of instructions executed while one
// function was the innermost open frame.
type FunctionCount struct {
	Function string
	Count    uint64
}

// Profile aggregates executed-instruction counts per function.
type Profile struct {
	Functions []FunctionCount
	Total     uint64
}

// Instructions attributes every instruction event to the function on
// top of the call stack at that point, so it works even for degraded
// sessions without a catalog. Results are ordered by count, heaviest
// first.
func Instructions(t *trace.Trace) Profile {
	counts := make(map[string]uint64)
	var stack []string
	var total uint64

	for i := 0; i < t.Len(); i++ {
		switch ev := t.Event(i).(type) {
		case *core.FunctionEntry:
			stack = append(stack, ev.Function)
		case *core.FunctionExit:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case *core.InstructionExecuted:
			if len(stack) > 0 {
				counts[stack[len(stack)-1]]++
			}
			total++
		}
	}

	profile := Profile{Total: total}
	for fn, n := range counts {
		profile.Functions = append(profile.Functions, FunctionCount{fn, n})
	}
	sort.Slice(profile.Functions, func(i, j int) bool {
		a, b := profile.Functions[i], profile.Functions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Function < b.Function
	})
	return profile
}
