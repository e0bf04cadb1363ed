package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soroban-kit/tracedbg/core"
)

// answerModule exports "answer" returning the constant 7.
func answerModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f, // type () -> i32
		0x03, 0x02, 0x01, 0x00, // one function of type 0
		0x07, 0x0a, 0x01, 0x06, 'a', 'n', 's', 'w', 'e', 'r', 0x00, 0x00,
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x07, 0x0b, // i32.const 7; end
	}
}

// callModule exports "outer" (calls "inner") and "inner" (returns 42).
func callModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
		0x03, 0x03, 0x02, 0x00, 0x00,
		0x07, 0x11, 0x02,
		0x05, 'o', 'u', 't', 'e', 'r', 0x00, 0x00,
		0x05, 'i', 'n', 'n', 'e', 'r', 0x00, 0x01,
		0x0a, 0x0b, 0x02,
		0x04, 0x00, 0x10, 0x01, 0x0b, // call 1; end
		0x04, 0x00, 0x41, 0x2a, 0x0b, // i32.const 42; end
	}
}

// importModule imports env.storage_has and exports "check" calling it.
func importModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x0c, 0x02,
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // (i32, i32) -> i32
		0x60, 0x00, 0x01, 0x7f, // () -> i32
		0x02, 0x13, 0x01,
		0x03, 'e', 'n', 'v',
		0x0b, 's', 't', 'o', 'r', 'a', 'g', 'e', '_', 'h', 'a', 's',
		0x00, 0x00,
		0x03, 0x02, 0x01, 0x01,
		0x07, 0x09, 0x01, 0x05, 'c', 'h', 'e', 'c', 'k', 0x00, 0x01,
		0x0a, 0x0a, 0x01, 0x08, 0x00,
		0x41, 0x00, 0x41, 0x00, 0x10, 0x00, 0x0b,
	}
}

func withCustomSection(module []byte, name string, data []byte) []byte {
	payload := append([]byte{byte(len(name))}, name...)
	payload = append(payload, data...)
	out := append([]byte{}, module...)
	out = append(out, 0x00, byte(len(payload)))
	return append(out, payload...)
}

func TestDecodeSingleFunction(t *testing.T) {
	cat, err := Decode(answerModule())
	require.NoError(t, err)

	require.Equal(t, 2, cat.Len())

	first := cat.Instruction(0)
	require.NotNil(t, first)
	require.Equal(t, "i32.const", first.Mnemonic)
	require.Equal(t, "7", first.Operands)
	require.Equal(t, uint32(0), first.ByteOffset)
	require.Equal(t, core.FunctionID(0), first.Function)

	last := cat.Instruction(1)
	require.Equal(t, "end", last.Mnemonic)
	require.Equal(t, uint32(2), last.ByteOffset)

	ranges := cat.Ranges()
	require.Len(t, ranges, 1)
	require.Equal(t, "answer", ranges[0].Name)
	require.Equal(t, uint32(0), ranges[0].Start)
	require.Equal(t, uint32(2), ranges[0].End)

	require.Equal(t, []string{"answer"}, cat.ExportedFunctions())
	require.Equal(t, "answer", cat.FunctionName(0))

	fn, ok := cat.FunctionByName("answer")
	require.True(t, ok)
	require.Equal(t, core.FunctionID(0), fn)
}

func TestDecodeCallTargets(t *testing.T) {
	cat, err := Decode(callModule())
	require.NoError(t, err)

	require.Equal(t, 4, cat.Len())
	require.Equal(t, []string{"outer", "inner"}, cat.ExportedFunctions())

	callee, ok := cat.CallTarget(0)
	require.True(t, ok)
	require.Equal(t, core.FunctionID(1), callee)
	require.Equal(t, "func_1", cat.Instruction(0).Operands)

	_, ok = cat.CallTarget(1)
	require.False(t, ok)

	r, ok := cat.RangeOf("inner")
	require.True(t, ok)
	require.Equal(t, uint32(2), r.Start)
	require.Equal(t, uint32(4), r.End)

	r, ok = cat.RangeAt(3)
	require.True(t, ok)
	require.Equal(t, "inner", r.Name)

	_, ok = cat.RangeAt(99)
	require.False(t, ok)
}

func TestDecodeImportedFunctions(t *testing.T) {
	cat, err := Decode(importModule())
	require.NoError(t, err)

	// The single local function sits after the import in the index
	// space.
	require.Equal(t, "env.storage_has", cat.FunctionName(0))
	require.Equal(t, "check", cat.FunctionName(1))

	ranges := cat.Ranges()
	require.Len(t, ranges, 1)
	require.Equal(t, core.FunctionID(1), ranges[0].Function)
	require.Equal(t, "check", ranges[0].Name)

	callee, ok := cat.CallTarget(2)
	require.True(t, ok)
	require.Equal(t, core.FunctionID(0), callee)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("not a wasm module"))
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(answerModule()[:20])
	require.ErrorIs(t, err, ErrMalformed)

	bad := answerModule()
	bad[len(bad)-3] = 0xff // undefined opcode inside the body
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestMnemonicFallback(t *testing.T) {
	cat, err := Decode(answerModule())
	require.NoError(t, err)
	require.Equal(t, UnknownMnemonic, cat.Mnemonic(99))
	require.Nil(t, cat.Instruction(99))
}

func TestFunctionNameFallback(t *testing.T) {
	cat, err := Decode(answerModule())
	require.NoError(t, err)
	require.Equal(t, "func_5", cat.FunctionName(5))
}

func TestMetadataJSON(t *testing.T) {
	module := withCustomSection(answerModule(), "contractmeta",
		[]byte(`{"contract_version":"1.4.2","sdk_version":"20.0.0","author":"acme"}`))

	cat, err := Decode(module)
	require.NoError(t, err)

	meta := cat.Metadata()
	require.Equal(t, "1.4.2", meta.ContractVersion)
	require.Equal(t, "20.0.0", meta.SDKVersion)
	require.Equal(t, "acme", meta.Author)
	require.False(t, meta.IsEmpty())
}

func TestMetadataLines(t *testing.T) {
	module := withCustomSection(answerModule(), "contractmeta",
		[]byte("contract_version=2.0.0\nbuild_date: 2024-03-01\nignored line"))

	cat, err := Decode(module)
	require.NoError(t, err)

	meta := cat.Metadata()
	require.Equal(t, "2.0.0", meta.ContractVersion)
	require.Equal(t, "2024-03-01", meta.BuildDate)
}

func TestMetadataAbsent(t *testing.T) {
	cat, err := Decode(answerModule())
	require.NoError(t, err)
	require.True(t, cat.Metadata().IsEmpty())
}

func TestModuleInfo(t *testing.T) {
	cat, err := Decode(callModule())
	require.NoError(t, err)

	info := cat.Info()
	require.Equal(t, 1, info.TypeCount)
	require.Equal(t, 2, info.FunctionCount)
	require.Equal(t, 2, info.ExportCount)
}
