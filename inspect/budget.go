// Package inspect provides read-only views over a recorded trace:
// resource budget figures and per-function instruction profiles. It
// never interprets budget policy beyond presentation thresholds.
package inspect

import (
	"fmt"

	"github.com/c2h5oh/datasize"

	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/params"
	"github.com/soroban-kit/tracedbg/trace"
)

// BudgetInfo is the resource meter reading at one trace position.
type BudgetInfo struct {
	CPUInstructions uint64
	CPULimit        uint64
	MemoryBytes     uint64
	MemoryLimit     uint64
}

// CPUPercentage returns consumed CPU as a percentage of the limit.
func (b BudgetInfo) CPUPercentage() float64 {
	if b.CPULimit == 0 {
		return 0
	}
	return float64(b.CPUInstructions) / float64(b.CPULimit) * 100
}

// MemoryPercentage returns consumed memory as a percentage of the
// limit.
func (b BudgetInfo) MemoryPercentage() float64 {
	if b.MemoryLimit == 0 {
		return 0
	}
	return float64(b.MemoryBytes) / float64(b.MemoryLimit) * 100
}

// BudgetAt reads the last resource sample at or before pos. Positions
// before the first sample report zero usage.
func BudgetAt(t *trace.Trace, pos int, limits params.Budget) BudgetInfo {
	info := BudgetInfo{CPULimit: limits.CPULimit, MemoryLimit: limits.MemLimit}
	if pos >= t.Len() {
		pos = t.Len() - 1
	}
	for i := pos; i >= 0; i-- {
		if sample, ok := t.Event(i).(*core.ResourceSample); ok {
			info.CPUInstructions = sample.CPU
			info.MemoryBytes = sample.Memory
			break
		}
	}
	return info
}

// Severity grades a budget warning.
type Severity uint8

const (
	SeverityYellow Severity = iota
	SeverityRed
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityYellow:
		return "warning"
	case SeverityRed:
		return "alert"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity %d", s)
	}
}

// Warning flags a resource running close to its limit.
type Warning struct {
	Resource   string
	Percentage float64
	Severity   Severity
	Detail     string
}

// CheckThresholds grades CPU and memory usage against the 70/90/95%
// thresholds.
func CheckThresholds(info BudgetInfo) []Warning {
	var warnings []Warning
	if w, ok := grade("cpu", info.CPUPercentage(),
		fmt.Sprintf("%d of %d instructions", info.CPUInstructions, info.CPULimit)); ok {
		warnings = append(warnings, w)
	}
	if w, ok := grade("memory", info.MemoryPercentage(),
		fmt.Sprintf("%s of %s",
			datasize.ByteSize(info.MemoryBytes).HumanReadable(),
			datasize.ByteSize(info.MemoryLimit).HumanReadable())); ok {
		warnings = append(warnings, w)
	}
	return warnings
}

func grade(resource string, pct float64, detail string) (Warning, bool) {
	var severity Severity
	switch {
	case pct >= 95:
		severity = SeverityCritical
	case pct >= 90:
		severity = SeverityRed
	case pct >= 70:
		severity = SeverityYellow
	default:
		return Warning{}, false
	}
	return Warning{
		Resource:   resource,
		Percentage: pct,
		Severity:   severity,
		Detail:     detail,
	}, true
}
