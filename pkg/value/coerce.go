package value

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// decimalLiteral accepts plain decimal notation only; exponent forms fall through to double.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"1/2/2006",
	"1/2/2006 3:04:05 PM",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseInt parses a 64-bit integer, tolerating surrounding whitespace.
func ParseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return i, err == nil
}

// ParseDecimal parses an exact decimal in plain notation.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !decimalLiteral.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	return d, err == nil
}

// ParseDouble parses a finite float64.
func ParseDouble(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseTime parses the date and datetime layouts accepted by imports.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool accepts "true" and "false" in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Coerce runs the cascade over raw text. Empty text is null.
func Coerce(raw string) Value {
	if raw == "" {
		return Null()
	}
	if i, ok := ParseInt(raw); ok {
		return Int(i)
	}
	if d, ok := ParseDecimal(raw); ok {
		return Decimal(d)
	}
	if f, ok := ParseDouble(raw); ok {
		return Double(f)
	}
	if t, ok := ParseTime(raw); ok {
		return Time(t)
	}
	if b, ok := ParseBool(raw); ok {
		return Bool(b)
	}
	return String(raw)
}

// FromAny coerces a deserialized row value. nil is null; everything else goes
// through the cascade over its text form.
func FromAny(raw any) Value {
	text, ok := Text(raw)
	if !ok {
		return Null()
	}
	return Coerce(text)
}

// Text renders a deserialized row value as text. It reports false for nil.
func Text(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case decimal.Decimal:
		return decimalText(v), true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(b), true
	default:
		return fmt.Sprint(v), true
	}
}

// TextOr renders raw as text, substituting missing for nil.
func TextOr(raw any, missing string) string {
	if s, ok := Text(raw); ok {
		return s
	}
	return missing
}

// ToDouble coerces a raw row value for numeric reduction.
// Booleans count as 1 and 0; nil, non-numeric text, and NaN report false.
func ToDouble(raw any) (float64, bool) {
	if b, ok := raw.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return FromAny(raw).Float64()
}
