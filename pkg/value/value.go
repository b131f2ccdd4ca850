// Package value implements the dynamically-typed scalar used for every
// comparison, sort, and reduction over dataset rows.
//
// Rows come back from storage as loosely-typed JSON, so the declared column
// type is never trusted at query time. Each raw value is re-inferred through
// one shared cascade: int64, exact decimal, double, datetime, boolean, string.
package value

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the variant held by a Value.
type Kind int

// Value kinds in cascade order. Null sorts before everything.
const (
	KindNull Kind = iota
	KindInt
	KindDecimal
	KindDouble
	KindDateTime
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindDouble:
		return "double"
	case KindDateTime:
		return "datetime"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a tagged union over null, bool, int64, decimal, float64, time, and string.
type Value struct {
	kind Kind
	b    bool
	i    int64
	d    decimal.Decimal
	f    float64
	t    time.Time
	s    string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Int wraps an int64.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Decimal wraps an exact decimal.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }

// Double wraps a float64.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// Time wraps a time.Time.
func Time(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string without inference.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether v is an int, decimal, or double.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindDecimal || v.kind == KindDouble
}

// Float64 converts numeric and boolean values to float64.
// Booleans map to 1 and 0. Other kinds and NaN report false.
func (v Value) Float64() (float64, bool) {
	var f float64
	switch v.kind {
	case KindInt:
		f = float64(v.i)
	case KindDecimal:
		f = v.d.InexactFloat64()
	case KindDouble:
		f = v.f
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// TimeValue returns the held time for datetime values.
func (v Value) TimeValue() (time.Time, bool) {
	return v.t, v.kind == KindDateTime
}

// String renders the canonical text form. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return decimalText(v.d)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// decimalText keeps the parsed scale, so "10.50" stays "10.50".
func decimalText(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
