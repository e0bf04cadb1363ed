// Package engine orchestrates the debugging session: it decodes the
// catalog, records the trace once through the execution host, and
// answers stepping and inspection commands against the recorded trace.
// Nothing is ever re-executed after recording.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/soroban-kit/tracedbg/breakpoint"
	"github.com/soroban-kit/tracedbg/catalog"
	"github.com/soroban-kit/tracedbg/cursor"
	"github.com/soroban-kit/tracedbg/history"
	"github.com/soroban-kit/tracedbg/inspect"
	"github.com/soroban-kit/tracedbg/params"
	"github.com/soroban-kit/tracedbg/trace"
)

// Engine serves one debugging session at a time. The breakpoint set it
// owns persists across invocations, so breakpoints survive a restart of
// the same contract function.
type Engine struct {
	cfg  params.Config
	host trace.Host
	bps  *breakpoint.Manager
	runs *history.Manager // nil when run history is disabled
}

// New returns an engine executing through the given host. The host is
// the only collaborator that can block; everything after recording is
// an in-memory scan.
func New(host trace.Host, cfg params.Config) *Engine {
	e := &Engine{
		cfg:  cfg,
		host: host,
		bps:  breakpoint.NewManager(),
	}
	if cfg.HistoryDir != "" {
		e.runs = history.NewManager(cfg.HistoryDir)
	}
	return e
}

// Breakpoints exposes the engine's persistent breakpoint set.
func (e *Engine) Breakpoints() *breakpoint.Manager {
	return e.bps
}

// Start records one invocation and returns the positioned session. A
// trap or exhausted budget during recording is not a start failure; it
// is surfaced through the session's terminal status. Start fails only
// when the host itself cannot be invoked.
func (e *Engine) Start(ctx context.Context, module []byte, function, args string,
	initialStorage map[string]string, breakpoints []string) (*Session, error) {

	if len(module) == 0 {
		return nil, errors.New("empty module bytes")
	}

	for _, name := range breakpoints {
		e.bps.Register(name)
	}

	cat, err := catalog.Decode(module)
	if err != nil {
		// Degraded session: function-granularity only.
		log.Warn("instruction decoding unavailable", "err", err)
		cat = nil
	}

	rec := trace.NewRecorder(e.host, cat)
	tr, err := rec.Record(ctx, trace.Request{
		Module:         module,
		Function:       function,
		Args:           args,
		InitialStorage: initialStorage,
	})
	if err != nil {
		return nil, err
	}

	pos := e.bps.ResolveInitialPosition(tr)
	cur := cursor.New(tr, pos, e.cfg.HistoryCapacity)

	s := &Session{
		id:      uuid.NewString(),
		module:  hexutil.Encode(crypto.Keccak256(module)),
		fn:      function,
		cat:     cat,
		tr:      tr,
		cur:     cur,
		stepper: cursor.NewStepper(tr, cat),
		bps:     e.bps,
	}
	s.log = log.New("session", s.id)
	s.log.Info("session started", "function", function,
		"events", tr.Len(), "status", tr.TerminalStatus(), "position", pos)

	e.recordRun(s)
	return s, nil
}

// recordRun persists this invocation's resource figures and warns when
// they regressed against the previous run of the same contract and
// function.
func (e *Engine) recordRun(s *Session) {
	if e.runs == nil {
		return
	}
	budget := inspect.BudgetAt(s.tr, s.tr.Len()-1, e.cfg.Budget)
	rec := history.Record{
		Date:         time.Now().UTC().Format(time.RFC3339),
		ContractHash: s.module,
		Function:     s.fn,
		CPUUsed:      budget.CPUInstructions,
		MemoryUsed:   budget.MemoryBytes,
	}
	if err := e.runs.Append(rec); err != nil {
		s.log.Warn("run history not recorded", "err", err)
		return
	}
	prior, err := e.runs.Filter(s.module, s.fn)
	if err != nil {
		return
	}
	if cpu, mem, ok := history.CheckRegression(prior); ok {
		s.log.Warn("resource regression against previous run",
			"cpu_pct", cpu, "mem_pct", mem)
	}
}
