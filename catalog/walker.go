package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-interpreter/wagon/wasm/leb128"
	"github.com/go-interpreter/wagon/wasm/operators"

	"github.com/soroban-kit/tracedbg/core"
)

// walkBody decodes one function body opcode by opcode. Offsets are
// relative to the start of the body; truncated immediates and unknown
// opcodes are structural errors.
func (c *Catalog) walkBody(fn core.FunctionID, code []byte) error {
	start := uint32(len(c.instructions))
	r := bytes.NewReader(code)

	for r.Len() > 0 {
		offset := uint32(len(code) - r.Len())
		opcode, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		op, err := operators.New(opcode)
		if err != nil {
			return fmt.Errorf("%w: opcode 0x%02x at +%d in %s",
				ErrMalformed, opcode, offset, c.FunctionName(fn))
		}
		index := uint32(len(c.instructions))
		operands, err := c.readImmediates(opcode, r, index)
		if err != nil {
			return fmt.Errorf("%w: truncated %s at +%d in %s",
				ErrMalformed, op.Name, offset, c.FunctionName(fn))
		}
		c.instructions = append(c.instructions, core.Instruction{
			Index:      index,
			Function:   fn,
			ByteOffset: offset,
			Mnemonic:   op.Name,
			Operands:   operands,
		})
	}

	c.ranges = append(c.ranges, core.FunctionRange{
		Function: fn,
		Name:     c.FunctionName(fn),
		Start:    start,
		End:      uint32(len(c.instructions)),
	})
	return nil
}

// readImmediates consumes the immediate operands of the opcode just
// read and renders them for display. Call targets are additionally
// indexed for static call resolution.
func (c *Catalog) readImmediates(opcode byte, r *bytes.Reader, index uint32) (string, error) {
	switch opcode {
	case operators.Block, operators.Loop, operators.If:
		// Block signature, not shown in listings.
		if _, err := leb128.ReadVarint32(r); err != nil {
			return "", err
		}
		return "", nil

	case operators.Br, operators.BrIf:
		depth, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(uint64(depth), 10), nil

	case operators.BrTable:
		count, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		targets := make([]string, 0, count+1)
		for i := uint32(0); i <= count; i++ {
			t, err := leb128.ReadVarUint32(r)
			if err != nil {
				return "", err
			}
			targets = append(targets, strconv.FormatUint(uint64(t), 10))
		}
		return strings.Join(targets, " "), nil

	case operators.Call:
		target, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		c.callTargets[index] = core.FunctionID(target)
		return fmt.Sprintf("func_%d", target), nil

	case operators.CallIndirect:
		typeIndex, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		if _, err := leb128.ReadVarUint32(r); err != nil { // reserved
			return "", err
		}
		return fmt.Sprintf("type_%d", typeIndex), nil

	case operators.GetLocal, operators.SetLocal, operators.TeeLocal:
		local, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%d", local), nil

	case operators.GetGlobal, operators.SetGlobal:
		global, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("global_%d", global), nil

	case operators.CurrentMemory, operators.GrowMemory:
		if _, err := leb128.ReadVarUint32(r); err != nil { // reserved
			return "", err
		}
		return "", nil

	case operators.I32Const:
		v, err := leb128.ReadVarint32(r)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(v), 10), nil

	case operators.I64Const:
		v, err := leb128.ReadVarint64(r)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil

	case operators.F32Const:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return "", err
		}
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))), 'g', -1, 32), nil

	case operators.F64Const:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return "", err
		}
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), 'g', -1, 64), nil
	}

	// Memory loads and stores carry a memarg immediate.
	if opcode >= 0x28 && opcode <= 0x3e {
		align, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		offset, err := leb128.ReadVarUint32(r)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("offset=%d align=%d", offset, align), nil
	}

	return "", nil
}
