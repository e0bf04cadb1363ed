package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-interpreter/wagon/exec"
	"github.com/go-interpreter/wagon/wasm"

	"github.com/soroban-kit/tracedbg/catalog"
	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/params"
	"github.com/soroban-kit/tracedbg/trace"
)

// Simulator is the reference execution host. It runs the contract for
// real on an embedded wasm interpreter to obtain the true result and
// trap behavior, then reconstructs the instruction-level event stream
// from the static catalog, metering a deterministic resource budget as
// it goes. Mocked functions short-circuit instead of descending.
type Simulator struct {
	cfg   params.Config
	mocks *MockRegistry
}

// NewSimulator returns a host with the given budget and sampling
// configuration and an empty mock registry.
func NewSimulator(cfg params.Config) *Simulator {
	return &Simulator{cfg: cfg, mocks: NewMockRegistry()}
}

// Mocks exposes the registry so callers can install canned results
// before recording.
func (s *Simulator) Mocks() *MockRegistry {
	return s.mocks
}

// Execute satisfies the recorder's host contract. Structural failures
// of the module itself terminate the trace with a trap rather than
// failing the recording; only unusable requests (no module bytes,
// unparseable arguments, unknown export) are errors.
func (s *Simulator) Execute(ctx context.Context, req trace.Request) (trace.Result, error) {
	if len(req.Module) == 0 {
		return trace.Result{}, errors.New("empty module")
	}
	args, err := ParseArgs(req.Args)
	if err != nil {
		return trace.Result{}, err
	}

	ec := newEventCollector()

	cat, err := catalog.Decode(req.Module)
	if err != nil {
		ec.CaptureEnter(req.Function, 0, FormatArgs(args))
		ec.CaptureFault(fmt.Sprintf("module decode failed: %v", err))
		return trace.Result{Events: ec.events, Status: ec.status}, nil
	}

	fn, ok := cat.FunctionByName(req.Function)
	if !ok {
		return trace.Result{}, fmt.Errorf("function %q is not exported", req.Function)
	}

	wasmArgs, err := scalarArgs(args)
	if err != nil {
		return trace.Result{}, err
	}

	st := NewStorage(req.InitialStorage)
	defer st.Close()

	result, elapsed, vmErr := s.run(req.Module, req.Function, wasmArgs, st)
	if vmErr != nil {
		log.Debug("contract execution trapped", "function", req.Function, "err", vmErr)
	}

	w := &walker{
		sim:      s,
		cat:      cat,
		tracer:   ec,
		ctx:      ctx,
		visiting: make(map[core.FunctionID]bool),
	}
	fault := ""
	if vmErr != nil {
		fault = vmErr.Error()
	}
	if err := w.walk(fn, FormatArgs(args), result, elapsed, fault); err != nil {
		return trace.Result{}, err
	}

	if !ec.sealed {
		ec.CaptureSample(w.cpu, w.mem)
	}
	return trace.Result{Events: ec.events, Status: ec.status}, nil
}

// run performs the real interpreter pass. Any failure from module
// instantiation onward counts as a trap, not a host error.
func (s *Simulator) run(module []byte, function string, args []uint64, st *Storage) (string, time.Duration, error) {
	m, err := wasm.ReadModule(bytes.NewReader(module), moduleResolver(st))
	if err != nil {
		return "", 0, fmt.Errorf("link module: %v", err)
	}
	entry, ok := m.Export.Entries[function]
	if !ok {
		return "", 0, fmt.Errorf("export %q missing after link", function)
	}

	vm, err := exec.NewVM(m)
	if err != nil {
		return "", 0, fmt.Errorf("instantiate module: %v", err)
	}
	vm.RecoverPanic = true

	start := time.Now()
	out, err := vm.ExecCode(int64(entry.Index), args...)
	elapsed := time.Since(start)
	if err != nil {
		return "", elapsed, err
	}
	return formatResult(out), elapsed, nil
}

func scalarArgs(args []Value) ([]uint64, error) {
	out := make([]uint64, 0, len(args))
	for i, a := range args {
		raw, ok := a.Wasm()
		if !ok {
			return nil, fmt.Errorf("argument %d (%s) has no wasm scalar form", i, a.Kind)
		}
		out = append(out, raw)
	}
	return out, nil
}

func formatResult(out interface{}) string {
	if out == nil {
		return ""
	}
	return fmt.Sprintf("%v", out)
}

// walker replays the catalog's instruction listing function by
// function, charging the resource budget and descending through
// statically known calls. It is the sole producer of the event
// stream's shape.
type walker struct {
	sim    *Simulator
	cat    *catalog.Catalog
	tracer Tracer
	ctx    context.Context

	cpu         uint64
	mem         uint64
	sinceSample int
	visiting    map[core.FunctionID]bool
}

// walk emits the event stream for the outermost invocation. fault, when
// non-empty, replaces the outermost exit with a trap so abnormal
// terminations leave the entry unbalanced.
func (w *walker) walk(fn core.FunctionID, args, result string, elapsed time.Duration, fault string) error {
	aborted, err := w.walkFunction(fn, 0, args, result, elapsed, fault)
	if err != nil {
		return err
	}
	if !aborted && fault != "" {
		w.tracer.CaptureFault(fault)
	}
	return nil
}

func (w *walker) walkFunction(fn core.FunctionID, depth uint32, args, result string, elapsed time.Duration, fault string) (aborted bool, err error) {
	if err := w.ctx.Err(); err != nil {
		return false, err
	}
	if int(depth) > w.sim.cfg.MaxCallDepth {
		w.tracer.CaptureFault(fmt.Sprintf("call depth %d exceeds limit %d", depth, w.sim.cfg.MaxCallDepth))
		return true, nil
	}

	name := w.cat.FunctionName(fn)
	w.tracer.CaptureEnter(name, depth, args)
	start := time.Now()

	r, ok := w.rangeFor(fn)
	if !ok {
		// Imported or bodiless function, nothing to step through.
		w.tracer.CaptureExit(name, depth, result, time.Since(start))
		return false, nil
	}

	w.visiting[fn] = true
	defer delete(w.visiting, fn)

	for idx := r.Start; idx < r.End; idx++ {
		w.tracer.CaptureInstruction(idx)
		if w.chargeInstruction() {
			return true, nil
		}
		callee, isCall := w.cat.CallTarget(idx)
		if !isCall {
			continue
		}
		if w.chargeCall() {
			return true, nil
		}
		calleeName := w.cat.FunctionName(callee)
		if canned, mocked := w.sim.mocks.Lookup(calleeName); mocked {
			w.sim.mocks.record(calleeName, depth+1)
			w.tracer.CaptureEnter(calleeName, depth+1, "")
			w.tracer.CaptureExit(calleeName, depth+1, canned, 0)
			continue
		}
		if w.visiting[callee] {
			// Recursive edge; one level in the stream is enough.
			continue
		}
		aborted, err := w.walkFunction(callee, depth+1, "", "", 0, "")
		if aborted || err != nil {
			return aborted, err
		}
	}

	if depth == 0 && fault != "" {
		w.tracer.CaptureFault(fault)
		return true, nil
	}
	d := elapsed
	if d == 0 {
		d = time.Since(start)
	}
	w.tracer.CaptureExit(name, depth, result, d)
	return false, nil
}

func (w *walker) rangeFor(fn core.FunctionID) (core.FunctionRange, bool) {
	for _, r := range w.cat.Ranges() {
		if r.Function == fn {
			return r, true
		}
	}
	return core.FunctionRange{}, false
}

// chargeInstruction meters one instruction and emits periodic samples.
// It reports true when the budget ran out.
func (w *walker) chargeInstruction() bool {
	w.cpu += w.sim.cfg.Budget.CPUPerInstr
	if w.cpu > w.sim.cfg.Budget.CPULimit {
		w.tracer.CaptureSample(w.cpu, w.mem)
		w.tracer.CaptureBudgetExhausted()
		return true
	}
	w.sinceSample++
	if w.sinceSample >= w.sim.cfg.SampleInterval {
		w.tracer.CaptureSample(w.cpu, w.mem)
		w.sinceSample = 0
	}
	return false
}

// chargeCall meters the frame allocation of one call.
func (w *walker) chargeCall() bool {
	w.mem += w.sim.cfg.Budget.MemPerCall
	if w.mem > w.sim.cfg.Budget.MemLimit {
		w.tracer.CaptureSample(w.cpu, w.mem)
		w.tracer.CaptureBudgetExhausted()
		return true
	}
	return false
}
