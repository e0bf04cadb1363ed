// Package catalog statically decodes a wasm module into an ordered,
// indexed instruction listing. The catalog is a pure function of the
// module bytes and is immutable once built; it carries no execution
// state.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-interpreter/wagon/wasm"

	"github.com/soroban-kit/tracedbg/core"
)

// ErrMalformed is returned for structurally invalid modules: bad
// section headers, truncated opcodes, impossible counts. Missing debug
// metadata never produces it.
var ErrMalformed = errors.New("malformed wasm module")

// UnknownMnemonic is reported for instruction lookups that cannot be
// answered, typically because decoding failed and the session runs with
// function-granularity only.
const UnknownMnemonic = "<unknown>"

// Catalog is the decoded instruction listing of one module, together
// with the per-function index ranges used to resolve breakpoints
// without rescanning bytes.
type Catalog struct {
	instructions []core.Instruction
	ranges       []core.FunctionRange
	names        map[core.FunctionID]string
	callTargets  map[uint32]core.FunctionID
	exports      []string
	meta         Metadata
	info         ModuleInfo
}

// Decode walks the module's code section and produces one Instruction
// per opcode, in byte order, tagged with the enclosing function.
func Decode(moduleBytes []byte) (*Catalog, error) {
	m, err := wasm.DecodeModule(bytes.NewReader(moduleBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c := &Catalog{
		names:       make(map[core.FunctionID]string),
		callTargets: make(map[uint32]core.FunctionID),
	}
	c.meta = readMetadata(moduleBytes)
	c.info = moduleInfo(m)

	importedFuncs := countImportedFuncs(m)
	c.collectNames(m)

	if m.Code != nil {
		for i := range m.Code.Bodies {
			fn := core.FunctionID(importedFuncs + uint32(i))
			if err := c.walkBody(fn, m.Code.Bodies[i].Code); err != nil {
				return nil, err
			}
		}
	}

	log.Debug("decoded module", "instructions", len(c.instructions),
		"functions", len(c.ranges), "exports", len(c.exports))
	return c, nil
}

// Len returns the number of decoded instructions.
func (c *Catalog) Len() int {
	return len(c.instructions)
}

// Instruction returns the instruction at the given catalog index, or
// nil when the index is out of range.
func (c *Catalog) Instruction(index uint32) *core.Instruction {
	if int(index) >= len(c.instructions) {
		return nil
	}
	return &c.instructions[index]
}

// Instructions returns the full listing. Callers must not modify it.
func (c *Catalog) Instructions() []core.Instruction {
	return c.instructions
}

// Mnemonic returns the mnemonic at index, or UnknownMnemonic when the
// index cannot be resolved.
func (c *Catalog) Mnemonic(index uint32) string {
	if ins := c.Instruction(index); ins != nil {
		return ins.Mnemonic
	}
	return UnknownMnemonic
}

// Ranges returns the per-function catalog index ranges.
func (c *Catalog) Ranges() []core.FunctionRange {
	return c.ranges
}

// RangeOf returns the index range of the named function.
func (c *Catalog) RangeOf(name string) (core.FunctionRange, bool) {
	for _, r := range c.ranges {
		if r.Name == name {
			return r, true
		}
	}
	return core.FunctionRange{}, false
}

// RangeAt returns the range containing the given catalog index.
func (c *Catalog) RangeAt(index uint32) (core.FunctionRange, bool) {
	i := sort.Search(len(c.ranges), func(i int) bool {
		return c.ranges[i].End > index
	})
	if i < len(c.ranges) && c.ranges[i].Contains(index) {
		return c.ranges[i], true
	}
	return core.FunctionRange{}, false
}

// FunctionName resolves a function index to its exported name, falling
// back to the func_N convention for internal functions.
func (c *Catalog) FunctionName(fn core.FunctionID) string {
	if name, ok := c.names[fn]; ok {
		return name
	}
	return fmt.Sprintf("func_%d", fn)
}

// FunctionByName resolves an exported function name back to its index.
func (c *Catalog) FunctionByName(name string) (core.FunctionID, bool) {
	for fn, n := range c.names {
		if n == name {
			return fn, true
		}
	}
	return 0, false
}

// CallTarget returns the static callee of the call instruction at the
// given catalog index. It reports false for non-call instructions and
// for indirect calls, whose target is not statically known.
func (c *Catalog) CallTarget(index uint32) (core.FunctionID, bool) {
	fn, ok := c.callTargets[index]
	return fn, ok
}

// ExportedFunctions lists the module's exported function names in
// export-index order.
func (c *Catalog) ExportedFunctions() []string {
	return c.exports
}

// Metadata returns contract metadata parsed from custom sections. All
// fields are best-effort.
func (c *Catalog) Metadata() Metadata {
	return c.meta
}

// Info returns high-level module statistics.
func (c *Catalog) Info() ModuleInfo {
	return c.info
}

func countImportedFuncs(m *wasm.Module) uint32 {
	if m.Import == nil {
		return 0
	}
	var n uint32
	for _, entry := range m.Import.Entries {
		if entry.Type.Kind() == wasm.ExternalFunction {
			n++
		}
	}
	return n
}

func (c *Catalog) collectNames(m *wasm.Module) {
	if m.Export == nil {
		return
	}
	type export struct {
		name  string
		index uint32
	}
	var funcs []export
	for name, entry := range m.Export.Entries {
		if entry.Kind == wasm.ExternalFunction {
			funcs = append(funcs, export{name, entry.Index})
		}
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].index < funcs[j].index })
	for _, e := range funcs {
		c.names[core.FunctionID(e.index)] = e.name
		c.exports = append(c.exports, e.name)
	}
	if m.Import != nil {
		var fn uint32
		for _, entry := range m.Import.Entries {
			if entry.Type.Kind() == wasm.ExternalFunction {
				if _, ok := c.names[core.FunctionID(fn)]; !ok {
					c.names[core.FunctionID(fn)] = entry.ModuleName + "." + entry.FieldName
				}
				fn++
			}
		}
	}
}
