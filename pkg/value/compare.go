package value

import (
	"cmp"
	"strings"

	"github.com/shopspring/decimal"
)

// Compare orders two values. Null sorts first. Numeric kinds compare by
// magnitude, exactly when both are exact. Otherwise values of different
// kinds order by kind, and values of one kind compare natively.
func Compare(a, b Value) int {
	if a.kind == KindNull || b.kind == KindNull {
		return cmp.Compare(boolRank(!a.IsNull()), boolRank(!b.IsNull()))
	}
	if a.IsNumeric() && b.IsNumeric() {
		return compareNumeric(a, b)
	}
	if a.kind != b.kind {
		return cmp.Compare(kindRank(a.kind), kindRank(b.kind))
	}
	switch a.kind {
	case KindDateTime:
		return a.t.Compare(b.t)
	case KindBool:
		return cmp.Compare(boolRank(a.b), boolRank(b.b))
	default:
		return strings.Compare(a.s, b.s)
	}
}

func compareNumeric(a, b Value) int {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return cmp.Compare(a.i, b.i)
	case a.kind != KindDouble && b.kind != KindDouble:
		return exact(a).Cmp(exact(b))
	}
	af, _ := a.Float64()
	bf, _ := b.Float64()
	return cmp.Compare(af, bf)
}

func exact(v Value) decimal.Decimal {
	if v.kind == KindInt {
		return decimal.NewFromInt(v.i)
	}
	return v.d
}

func kindRank(k Kind) int {
	switch k {
	case KindBool:
		return 1
	case KindInt, KindDecimal, KindDouble:
		return 2
	case KindDateTime:
		return 3
	default:
		return 4
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Unify coerces two texts to the first cascade level at which both parse:
// int64, decimal, double, datetime, bool, then string.
func Unify(a, b string) (Value, Value) {
	if x, ok := ParseInt(a); ok {
		if y, ok := ParseInt(b); ok {
			return Int(x), Int(y)
		}
	}
	if x, ok := ParseDecimal(a); ok {
		if y, ok := ParseDecimal(b); ok {
			return Decimal(x), Decimal(y)
		}
	}
	if x, ok := ParseDouble(a); ok {
		if y, ok := ParseDouble(b); ok {
			return Double(x), Double(y)
		}
	}
	if x, ok := ParseTime(a); ok {
		if y, ok := ParseTime(b); ok {
			return Time(x), Time(y)
		}
	}
	if x, ok := ParseBool(a); ok {
		if y, ok := ParseBool(b); ok {
			return Bool(x), Bool(y)
		}
	}
	return String(a), String(b)
}

// CompareText compares two texts at their shared cascade level.
func CompareText(a, b string) int {
	x, y := Unify(a, b)
	return Compare(x, y)
}
