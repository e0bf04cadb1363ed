package trace

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/soroban-kit/tracedbg/catalog"
	"github.com/soroban-kit/tracedbg/core"
)

// ErrRecordingFailed means the execution host could not be invoked at
// all. Execution failures inside the contract (traps, budget
// exhaustion) are not recording failures; they terminate the trace.
var ErrRecordingFailed = errors.New("recording failed")

// Request describes one contract invocation to record.
type Request struct {
	Module         []byte
	Function       string
	Args           string // JSON argument array, may be empty
	InitialStorage map[string]string
}

// Result is the host's raw output: the ordered event stream and how
// execution ended.
type Result struct {
	Events []core.Event
	Status core.TerminalStatus
}

// Host is the execution host collaborator. Implementations must emit
// events in true execution order, with balanced entry/exit pairs except
// on abnormal termination.
type Host interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// Recorder drives a single invocation through the host and turns the
// raw stream into an immutable Trace. It is invoked exactly once per
// user-initiated run.
type Recorder struct {
	host Host
	cat  *catalog.Catalog // may be nil when static decoding failed
}

// NewRecorder returns a recorder bound to the given host. cat may be
// nil; the recorder then operates with function-name annotation only.
func NewRecorder(host Host, cat *catalog.Catalog) *Recorder {
	return &Recorder{host: host, cat: cat}
}

// Record performs the one blocking call into the execution host and
// builds the trace. Terminal events in the stream override the reported
// status so the two can never disagree.
func (r *Recorder) Record(ctx context.Context, req Request) (*Trace, error) {
	res, err := r.host.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordingFailed, err)
	}

	status := res.Status
	if len(res.Events) > 0 {
		switch res.Events[len(res.Events)-1].(type) {
		case *core.Trapped:
			status = core.StatusTrapped
		case *core.BudgetExceeded:
			status = core.StatusBudgetExceeded
		}
	}

	if r.cat != nil {
		r.checkIndices(res.Events)
	}

	t := New(res.Events, status)
	log.Debug("recorded trace", "function", req.Function,
		"events", t.Len(), "status", t.TerminalStatus())
	return t, nil
}

// checkIndices warns about instruction markers that fall outside the
// decoded catalog. Mnemonic lookups for them will degrade to
// "<unknown>" rather than fail.
func (r *Recorder) checkIndices(events []core.Event) {
	limit := uint32(r.cat.Len())
	for i, ev := range events {
		if ins, ok := ev.(*core.InstructionExecuted); ok && ins.CatalogIndex >= limit {
			log.Warn("instruction event outside catalog",
				"position", i, "index", ins.CatalogIndex, "catalog", limit)
		}
	}
}
