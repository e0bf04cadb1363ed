package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// maxSymbolLen is the platform limit on symbol values.
const maxSymbolLen = 32

var errNegativeWide = errors.New("negative wide integers are not supported")

// ParseArgs decodes a JSON argument array into typed host values.
// Elements are either annotated objects, {"type":"u32","value":10}, or
// bare scalars: numbers become i64 (wide decimals u128), strings become
// symbols, booleans booleans.
func ParseArgs(argsJSON string) ([]Value, error) {
	argsJSON = strings.TrimSpace(argsJSON)
	if argsJSON == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(argsJSON))
	dec.UseNumber()
	var raw []interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid argument JSON: %w", err)
	}

	args := make([]Value, 0, len(raw))
	for i, elem := range raw {
		v, err := parseArg(elem)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func parseArg(elem interface{}) (Value, error) {
	switch e := elem.(type) {
	case json.Number:
		return parseNumber(e.String())
	case string:
		return symbolValue(e)
	case bool:
		return Value{Kind: KindBool, Bool: e}, nil
	case map[string]interface{}:
		return parseTyped(e)
	default:
		return Value{}, fmt.Errorf("unsupported argument %v", elem)
	}
}

func parseTyped(obj map[string]interface{}) (Value, error) {
	typeName, _ := obj["type"].(string)
	if typeName == "" {
		return Value{}, errors.New(`annotated arguments need a "type" field`)
	}
	raw, ok := obj["value"]
	if !ok {
		return Value{}, errors.New(`annotated arguments need a "value" field`)
	}
	text := valueText(raw)

	switch typeName {
	case "u32":
		n, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return Value{}, rangeErr(typeName, text, err)
		}
		return Value{Kind: KindU32, U64: n}, nil
	case "i32":
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Value{}, rangeErr(typeName, text, err)
		}
		return Value{Kind: KindI32, I64: n}, nil
	case "u64":
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Value{}, rangeErr(typeName, text, err)
		}
		return Value{Kind: KindU64, U64: n}, nil
	case "i64":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, rangeErr(typeName, text, err)
		}
		return Value{Kind: KindI64, I64: n}, nil
	case "u128", "i128":
		big, err := wideValue(text)
		if err != nil {
			return Value{}, rangeErr(typeName, text, err)
		}
		return Value{Kind: KindU128, Big: big}, nil
	case "u256":
		big, err := wideValue(text)
		if err != nil {
			return Value{}, rangeErr(typeName, text, err)
		}
		return Value{Kind: KindU256, Big: big}, nil
	case "bool":
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("bool argument has non-boolean value %v", raw)
		}
		return Value{Kind: KindBool, Bool: b}, nil
	case "symbol":
		return symbolValue(text)
	case "string":
		return Value{Kind: KindString, Str: text}, nil
	default:
		return Value{}, fmt.Errorf("unsupported type %q", typeName)
	}
}

// parseNumber types a bare numeric literal: i64 when it fits, u128
// otherwise.
func parseNumber(text string) (Value, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Value{Kind: KindI64, I64: n}, nil
	}
	if n, err := strconv.ParseUint(text, 10, 64); err == nil {
		return Value{Kind: KindU64, U64: n}, nil
	}
	big, err := wideValue(text)
	if err != nil {
		return Value{}, fmt.Errorf("number %s: %w", text, err)
	}
	return Value{Kind: KindU128, Big: big}, nil
}

func wideValue(text string) (*uint256.Int, error) {
	if strings.HasPrefix(text, "-") {
		return nil, errNegativeWide
	}
	big := new(uint256.Int)
	if err := big.SetFromDecimal(text); err != nil {
		return nil, err
	}
	return big, nil
}

func symbolValue(s string) (Value, error) {
	if len(s) > maxSymbolLen {
		return Value{}, fmt.Errorf("symbol %q exceeds %d characters", s, maxSymbolLen)
	}
	return Value{Kind: KindSymbol, Str: s}, nil
}

func valueText(raw interface{}) string {
	switch v := raw.(type) {
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", raw)
	}
}

func rangeErr(typeName, text string, err error) error {
	return fmt.Errorf("value %s out of range for %s: %v", text, typeName, err)
}
