package querybuilder

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// valueText converts a decoded JSON value to its textual form.
func valueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// numericText returns the trimmed number and true when v is a finite decimal
// number, either natively or as text.
func numericText(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(valueText(v))
	if s == "" || !decimalRe.MatchString(s) {
		return "", false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	return s, true
}

// IsNumeric reports whether v would be emitted as a bare numeric literal.
func IsNumeric(v any) bool {
	_, ok := numericText(v)
	return ok
}

// literal renders v for comparison. nil becomes NULL, numbers are bare and
// everything else is an escaped text literal, normalized when normalize is set.
func literal(v any, normalize bool) Expr {
	if v == nil {
		return Null{}
	}
	if n, ok := numericText(v); ok && !normalize {
		return NumLit{text: n}
	}
	lit := TextLit(valueText(v))
	if normalize {
		return Normalized{Expr: lit}
	}
	return lit
}

// listValues flattens the value of an "in" condition.
func listValues(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
