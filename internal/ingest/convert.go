package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var numberNoise = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "", " ", "", "\u00a0", "")

// parseAmount reads a money or plain numeric cell. Blank and NaN-like cells
// are zero; currency symbols, thousands separators and accounting
// parentheses are accepted.
func parseAmount(cell string) (decimal.Decimal, error) {
	s := strings.TrimSpace(cell)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "n/a", "-":
		return decimal.Zero, nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = numberNoise.Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", cell)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func parseFloat(cell string) (float64, error) {
	d, err := parseAmount(cell)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// parseCount reads an integer cell; "12.0" is 12 and fractions truncate.
func parseCount(cell string) (int64, error) {
	d, err := parseAmount(cell)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

// costPerClick is spend/clicks, or 0 when there were no clicks.
func costPerClick(spend decimal.Decimal, clicks int64) float64 {
	if clicks <= 0 {
		return 0
	}
	return spend.DivRound(decimal.NewFromInt(clicks), 6).InexactFloat64()
}

// productID renders an id cell; spreadsheets often store numeric ids as
// floats ("123.0").
func productID(cell string) string {
	s := strings.TrimSpace(cell)
	if strings.HasSuffix(s, ".0") {
		if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
			return d.String()
		}
	}
	return s
}
