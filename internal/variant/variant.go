// Package variant implements the tagged-union value model every license
// field is stored and passed as, together with the type and datetime
// coercion rules used by field validators.
package variant

import (
	"encoding/json"
	"fmt"
	"time"

	licerrors "licseal/internal/errors"
)

// Kind identifies which member of the union a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindList
)

// String returns the human-readable type name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "double"
	case KindBool:
		return "bool"
	case KindTime:
		return "datetime"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a closed tagged union over the supported field value types.
// The zero Value is the Null variant.
type Value struct {
	kind Kind

	strVal   string
	intVal   int64
	floatVal float64
	boolVal  bool
	timeVal  time.Time
	listVal  []Value
}

// Null returns the Null variant.
func Null() Value {
	return Value{}
}

// String wraps a string value.
func String(s string) Value {
	return Value{kind: KindString, strVal: s}
}

// Int wraps an integer value.
func Int(n int64) Value {
	return Value{kind: KindInt, intVal: n}
}

// Float wraps a floating-point value. Decimal inputs are carried as
// float64, so extreme decimal precision may be lost on the way in.
func Float(f float64) Value {
	return Value{kind: KindFloat, floatVal: f}
}

// Bool wraps a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolVal: b}
}

// Time wraps an instant. The stored value is always normalized to UTC.
func Time(t time.Time) Value {
	return Value{kind: KindTime, timeVal: t.UTC()}
}

// List wraps an ordered sequence of values. The slice is copied.
func List(elems ...Value) Value {
	return Value{kind: KindList, listVal: append([]Value(nil), elems...)}
}

// Kind reports which member of the union the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is the Null variant.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Str returns the string member; ok is false for any other kind.
func (v Value) Str() (string, bool) {
	return v.strVal, v.kind == KindString
}

// Int64 returns the integer member; ok is false for any other kind.
func (v Value) Int64() (int64, bool) {
	return v.intVal, v.kind == KindInt
}

// Float64 returns the float member; ok is false for any other kind.
func (v Value) Float64() (float64, bool) {
	return v.floatVal, v.kind == KindFloat
}

// Boolean returns the bool member; ok is false for any other kind.
func (v Value) Boolean() (bool, bool) {
	return v.boolVal, v.kind == KindBool
}

// Instant returns the time member; ok is false for any other kind.
func (v Value) Instant() (time.Time, bool) {
	return v.timeVal, v.kind == KindTime
}

// Elems returns the list member; ok is false for any other kind.
// The returned slice is shared and must not be mutated by the caller.
func (v Value) Elems() ([]Value, bool) {
	return v.listVal, v.kind == KindList
}

// Text renders the value as a string for processors that operate on the
// string form of their input (ToUpper, ToLower).
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.strVal
	case KindInt:
		return fmt.Sprintf("%d", v.intVal)
	case KindFloat:
		return fmt.Sprintf("%g", v.floatVal)
	case KindBool:
		return fmt.Sprintf("%t", v.boolVal)
	case KindTime:
		return v.timeVal.Format(time.RFC3339)
	case KindList:
		elems := make([]string, len(v.listVal))
		for i, e := range v.listVal {
			elems[i] = e.Text()
		}
		b, _ := json.Marshal(elems)
		return string(b)
	default:
		return ""
	}
}

// Equal reports deep equality of two values, including list elements.
// Times compare by instant.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.strVal == b.strVal
	case KindInt:
		return a.intVal == b.intVal
	case KindFloat:
		return a.floatVal == b.floatVal
	case KindBool:
		return a.boolVal == b.boolVal
	case KindTime:
		return a.timeVal.Equal(b.timeVal)
	case KindList:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromInterface converts a decoded Go value (as produced by encoding/json
// or yaml) into a Value. Unsupported dynamic types are an InvalidInput
// error rather than a silent string conversion.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Int(int64(t)), nil
	case uint64:
		return Int(int64(t)), nil
	case float32:
		return floatOrInt(float64(t)), nil
	case float64:
		return floatOrInt(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null(), licerrors.TypeConversion(t.String(), "number")
		}
		return Float(f), nil
	case time.Time:
		return Time(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return Null(), fmt.Errorf("list element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return Value{kind: KindList, listVal: elems}, nil
	case []string:
		elems := make([]Value, len(t))
		for i, s := range t {
			elems[i] = String(s)
		}
		return Value{kind: KindList, listVal: elems}, nil
	default:
		return Null(), licerrors.InvalidInput(fmt.Sprintf("unsupported value type %T", x))
	}
}

// floatOrInt keeps JSON-decoded whole numbers as integers so that schema
// int fields survive a decode round trip.
func floatOrInt(f float64) Value {
	if f == float64(int64(f)) {
		return Int(int64(f))
	}
	return Float(f)
}

// ToInterface converts a Value back into the plain Go representation the
// serialization collaborator consumes. Times become RFC3339 strings.
func (v Value) ToInterface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.strVal
	case KindInt:
		return v.intVal
	case KindFloat:
		return v.floatVal
	case KindBool:
		return v.boolVal
	case KindTime:
		return v.timeVal.Format(time.RFC3339)
	case KindList:
		out := make([]any, len(v.listVal))
		for i, e := range v.listVal {
			out[i] = e.ToInterface()
		}
		return out
	default:
		return nil
	}
}
