package host

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Kind enumerates the argument value types accepted by the host.
type Kind uint8

const (
	KindU32 Kind = iota
	KindI32
	KindU64
	KindI64
	KindU128
	KindU256
	KindBool
	KindSymbol
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindU32:
		return "u32"
	case KindI32:
		return "i32"
	case KindU64:
		return "u64"
	case KindI64:
		return "i64"
	case KindU128:
		return "u128"
	case KindU256:
		return "u256"
	case KindBool:
		return "bool"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind %d", k)
	}
}

// Value is one typed invocation argument. Wide integers are carried as
// 256-bit words regardless of their declared width.
type Value struct {
	Kind Kind
	U64  uint64
	I64  int64
	Big  *uint256.Int
	Str  string
	Bool bool
}

// String renders the value the way it appears in trace annotations.
func (v Value) String() string {
	switch v.Kind {
	case KindU32, KindU64:
		return fmt.Sprintf("%d", v.U64)
	case KindI32, KindI64:
		return fmt.Sprintf("%d", v.I64)
	case KindU128, KindU256:
		if v.Big == nil {
			return "0"
		}
		return v.Big.Dec()
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindSymbol, KindString:
		return fmt.Sprintf("%q", v.Str)
	default:
		return "?"
	}
}

// Wasm converts the value to a raw wasm scalar when possible. Wide
// integers and text values have no scalar representation.
func (v Value) Wasm() (uint64, bool) {
	switch v.Kind {
	case KindU32, KindU64:
		return v.U64, true
	case KindI32:
		return uint64(uint32(int32(v.I64))), true
	case KindI64:
		return uint64(v.I64), true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// FormatArgs renders an argument list for FunctionEntry annotations.
func FormatArgs(args []Value) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
