package host

import "github.com/ethereum/go-ethereum/log"

// MockCall is one recorded hit against a mocked function.
type MockCall struct {
	Function string
	Depth    uint32
}

// MockRegistry substitutes canned results for named functions. When the
// simulated walk reaches a call to a mocked function it records the
// hit and returns the canned result instead of descending into the
// callee.
type MockRegistry struct {
	results map[string]string
	calls   []MockCall
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{results: make(map[string]string)}
}

// Register installs a canned result for the named function,
// overwriting any previous one.
func (m *MockRegistry) Register(function, result string) {
	m.results[function] = result
	log.Debug("mock registered", "function", function)
}

// Remove deletes the mock for the named function.
func (m *MockRegistry) Remove(function string) {
	delete(m.results, function)
}

// Lookup returns the canned result for the function.
func (m *MockRegistry) Lookup(function string) (string, bool) {
	result, ok := m.results[function]
	return result, ok
}

// Calls returns the recorded hits in call order.
func (m *MockRegistry) Calls() []MockCall {
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockRegistry) record(function string, depth uint32) {
	m.calls = append(m.calls, MockCall{Function: function, Depth: depth})
}
