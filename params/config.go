// Package params holds the explicit configuration values threaded into
// a debugging session. Nothing in this repository reads ambient process
// state; sessions are reproducible from a Config alone.
package params

const (
	// DefaultHistoryCapacity bounds the cursor's back-step history.
	DefaultHistoryCapacity = 1024

	// DefaultSampleInterval is the number of executed instructions
	// between consecutive resource samples emitted by the simulator
	// host.
	DefaultSampleInterval = 16

	// DefaultMaxCallDepth bounds the simulated call tree.
	DefaultMaxCallDepth = 64
)

// Budget is the resource allowance enforced by the reference host.
// CPU is metered in abstract instruction units, memory in bytes.
type Budget struct {
	CPULimit    uint64
	MemLimit    uint64
	CPUPerInstr uint64
	MemPerCall  uint64
}

// DefaultBudget mirrors the limits of a single contract invocation on
// the target network, scaled for local debugging.
var DefaultBudget = Budget{
	CPULimit:    100_000_000,
	MemLimit:    40 * 1024 * 1024,
	CPUPerInstr: 4,
	MemPerCall:  4 * 1024,
}

// Config carries all tunables of one debugging session.
type Config struct {
	Budget          Budget
	HistoryCapacity int
	SampleInterval  int
	MaxCallDepth    int

	// HistoryDir is the base directory for persisted run records.
	// Empty disables run history.
	HistoryDir string
}

// DefaultConfig returns the configuration used when the caller supplies
// nothing.
func DefaultConfig() Config {
	return Config{
		Budget:          DefaultBudget,
		HistoryCapacity: DefaultHistoryCapacity,
		SampleInterval:  DefaultSampleInterval,
		MaxCallDepth:    DefaultMaxCallDepth,
	}
}
