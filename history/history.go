// Package history persists per-invocation resource figures so
// consecutive runs of the same contract function can be compared.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Record is one completed invocation.
type Record struct {
	Date         string `json:"date"`
	ContractHash string `json:"contract_hash"`
	Function     string `json:"function"`
	CPUUsed      uint64 `json:"cpu_used"`
	MemoryUsed   uint64 `json:"memory_used"`
}

// Manager reads and appends the history file under its base directory.
type Manager struct {
	path string
}

// NewManager stores records in dir/history.json. The directory is
// created on first append.
func NewManager(dir string) *Manager {
	return &Manager{path: filepath.Join(dir, "history.json")}
}

// Load returns all recorded runs. A missing or unreadable file yields
// an empty history rather than an error; the file is advisory.
func (m *Manager) Load() ([]Record, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history %s: %w", m.path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil
	}
	return records, nil
}

// Append adds one record and rewrites the file.
func (m *Manager) Append(rec Record) error {
	records, err := m.Load()
	if err != nil {
		return err
	}
	records = append(records, rec)

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", m.path, err)
	}
	return nil
}

// Filter returns the records matching the given contract hash and
// function. An empty value matches everything.
func (m *Manager) Filter(contractHash, function string) ([]Record, error) {
	records, err := m.Load()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range records {
		if contractHash != "" && r.ContractHash != contractHash {
			continue
		}
		if function != "" && r.Function != function {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// CheckRegression compares the two most recent records and reports the
// percentage growth of CPU and memory when either exceeds 10%.
func CheckRegression(records []Record) (cpuPct, memPct float64, regressed bool) {
	if len(records) < 2 {
		return 0, 0, false
	}
	latest := records[len(records)-1]
	previous := records[len(records)-2]

	if previous.CPUUsed > 0 && latest.CPUUsed > previous.CPUUsed {
		p := float64(latest.CPUUsed-previous.CPUUsed) / float64(previous.CPUUsed) * 100
		if p > 10 {
			cpuPct = p
		}
	}
	if previous.MemoryUsed > 0 && latest.MemoryUsed > previous.MemoryUsed {
		p := float64(latest.MemoryUsed-previous.MemoryUsed) / float64(previous.MemoryUsed) * 100
		if p > 10 {
			memPct = p
		}
	}
	return cpuPct, memPct, cpuPct > 0 || memPct > 0
}
