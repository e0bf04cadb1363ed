// Package breakpoint implements the named-function breakpoint registry
// and the scans that turn registered names into trace positions.
package breakpoint

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/soroban-kit/tracedbg/core"
	"github.com/soroban-kit/tracedbg/trace"
)

// Manager is the breakpoint set. Insertion order is preserved for
// listing. It persists across invocations within one session, so it is
// deliberately independent of any particular trace.
type Manager struct {
	names   []string
	present map[string]struct{}
}

func NewManager() *Manager {
	return &Manager{present: make(map[string]struct{})}
}

// Register adds a function name to the set. Registering a name that is
// already present is a no-op. Names that never appear in a trace are
// accepted; they simply never match.
func (m *Manager) Register(name string) {
	if _, ok := m.present[name]; ok {
		return
	}
	m.present[name] = struct{}{}
	m.names = append(m.names, name)
	log.Debug("breakpoint registered", "function", name)
}

// Clear removes a name from the set. Clearing an absent name is a
// no-op.
func (m *Manager) Clear(name string) {
	if _, ok := m.present[name]; !ok {
		return
	}
	delete(m.present, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
	log.Debug("breakpoint cleared", "function", name)
}

// Has reports whether the name is registered.
func (m *Manager) Has(name string) bool {
	_, ok := m.present[name]
	return ok
}

// List returns the registered names in insertion order.
func (m *Manager) List() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// FirstMatch returns the position of the first FunctionEntry for the
// named function. A function that never executed in this trace is not
// an error; it reports false.
func (m *Manager) FirstMatch(t *trace.Trace, name string) (int, bool) {
	for i := 0; i < t.Len(); i++ {
		if entry, ok := t.Event(i).(*core.FunctionEntry); ok && entry.Function == name {
			return i, true
		}
	}
	return 0, false
}

// ResolveInitialPosition scans the trace once and returns the earliest
// position whose FunctionEntry names a registered function. Earliest
// trace position wins, not registration order. Without a match the
// session starts at position 0.
func (m *Manager) ResolveInitialPosition(t *trace.Trace) int {
	if len(m.names) == 0 {
		return 0
	}
	for i := 0; i < t.Len(); i++ {
		if entry, ok := t.Event(i).(*core.FunctionEntry); ok && m.Has(entry.Function) {
			return i
		}
	}
	return 0
}

// NextMatch returns the first position strictly after from whose
// FunctionEntry names a registered function.
func (m *Manager) NextMatch(t *trace.Trace, from int) (int, bool) {
	for i := from + 1; i < t.Len(); i++ {
		if entry, ok := t.Event(i).(*core.FunctionEntry); ok && m.Has(entry.Function) {
			return i, true
		}
	}
	return 0, false
}
