package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRate renders a VAT percentage without superfluous decimals:
// 20 -> "20", 7.5 -> "7.5".
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).String()
}

// FormatMoney renders an amount with two decimals and thousands separators
// in the French convention: 7233.33 -> "7 233,33".
func FormatMoney(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		grouped.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteString(intPart[i : i+3])
	}

	out := grouped.String() + "," + fracPart
	if negative {
		out = "-" + out
	}
	return out
}
