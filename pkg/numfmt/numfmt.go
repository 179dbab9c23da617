// Package numfmt renders numbers the way answers quote them: grouped
// thousands, fixed decimals.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Grouped formats v with thousands separators and two decimals (1,234.50).
func Grouped(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Fixed formats v with two decimals and no grouping (2.00).
func Fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Count formats an integer with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

// ToFloat converts a scanned SQL value into a float. NULL converts to 0 with
// ok=true so that empty aggregates render as 0.00.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, true
	case float64:
		return sanitize(v), true
	case float32:
		return sanitize(float64(v)), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case []byte:
		return parse(string(v))
	case string:
		return parse(v)
	case fmt.Stringer:
		return parse(v.String())
	default:
		return 0, false
	}
}

func parse(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
