package dbhandler

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// Kind tags the dynamic type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindBytes
	// KindDecimal holds an exact decimal as its canonical text.
	KindDecimal
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindBytes:
		return "bytes"
	case KindDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single cell of a result row. Drivers do not guarantee static
// column types across queries, so the type travels with the value.
// The zero Value is NULL.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	raw  []byte
}

// Null is the NULL value.
var Null = Value{}

// NewValue normalizes a driver-produced Go value.
//
// All integer widths become KindInt, float widths KindFloat, []byte KindBytes.
// Unsigned values above math.MaxInt64 become KindDecimal.
// Types implementing fmt.Stringer (numeric, UUID and similar driver types) and
// anything else unknown are rendered with fmt into KindString.
func NewValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case Value:
		return x
	case string:
		return StringValue(x)
	case []byte:
		if x == nil {
			return Null
		}
		cp := make([]byte, len(x))
		copy(cp, x)
		return Value{kind: KindBytes, raw: cp}
	case bool:
		return BoolValue(x)
	case int:
		return IntValue(int64(x))
	case int8:
		return IntValue(int64(x))
	case int16:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return IntValue(int64(x))
	case uint16:
		return IntValue(int64(x))
	case uint32:
		return IntValue(int64(x))
	case uint64:
		return uintValue(x)
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case *big.Float:
		f, _ := x.Float64()
		return FloatValue(f)
	case time.Time:
		return TimeValue(x)
	case *string:
		if x == nil {
			return Null
		}
		return StringValue(*x)
	case *int64:
		if x == nil {
			return Null
		}
		return IntValue(*x)
	case *float64:
		if x == nil {
			return Null
		}
		return FloatValue(*x)
	case *time.Time:
		if x == nil {
			return Null
		}
		return TimeValue(*x)
	case fmt.Stringer:
		return StringValue(x.String())
	default:
		return StringValue(fmt.Sprint(x))
	}
}

// Constructors for each non-null kind.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }
func BytesValue(b []byte) Value { return NewValue(b) }

// DecimalValue holds an exact decimal. text must be a plain decimal literal
// such as "-12.340"; it is kept as given.
func DecimalValue(text string) Value { return Value{kind: KindDecimal, s: text} }

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return DecimalValue(strconv.FormatUint(u, 10))
	}
	return IntValue(int64(u))
}

// Kind returns the dynamic type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer content. Floats and decimals are truncated; decimals
// outside the int64 range and other kinds report false.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		return int64(v.f), true
	case KindDecimal:
		f, _, err := big.ParseFloat(v.s, 10, 256, big.ToZero)
		if err != nil || f.IsInf() {
			return 0, false
		}
		i, _ := f.Int(nil)
		if !i.IsInt64() {
			return 0, false
		}
		return i.Int64(), true
	}
	return 0, false
}

// Float returns the numeric content as float64. Decimals may lose precision.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindDecimal:
		f, err := strconv.ParseFloat(v.s, 64)
		return f, err == nil
	}
	return 0, false
}

// Bool returns the boolean content.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Time returns the time content.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// Bytes returns the binary content.
func (v Value) Bytes() ([]byte, bool) {
	return v.raw, v.kind == KindBytes
}

// Interface returns the value as a plain Go value (nil for NULL). Decimals are
// returned as their text.
func (v Value) Interface() any {
	switch v.kind {
	case KindString, KindDecimal:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindBytes:
		return v.raw
	}
	return nil
}

// String renders the value for display. NULL renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindDecimal:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindBytes:
		return fmt.Sprintf("\\x%x", v.raw)
	}
	return ""
}

// Equal compares kind and content. Times compare as instants.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString, KindDecimal:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	case KindBytes:
		return string(v.raw) == string(o.raw)
	}
	return false
}

// MarshalJSON encodes NULL as null and every other kind as its natural JSON
// type. Decimals are written as number literals without rounding.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindDecimal {
		return json.Marshal(json.Number(v.s))
	}
	return json.Marshal(v.Interface())
}
