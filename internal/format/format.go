// Package format renders amounts, rates and dates the way the loan documents print them.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day/month/year layout used on every document.
const DateLayout = "02/01/2006"

const thousandsSeparator = " "

// Money formats an amount with two decimals and a space as thousands separator,
// without currency symbol: 15000 -> "15 000.00".
func Money(amount decimal.Decimal) string {
	fixed := amount.Round(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + groupThousands(intPart) + "." + frac
}

// Rate formats a percentage rate with two decimals and a percent sign: 7.86 -> "7.86%".
func Rate(percent decimal.Decimal) string {
	return percent.StringFixed(2) + "%"
}

// MonthlyRate formats a monthly rate fraction with ten decimals.
func MonthlyRate(rate decimal.Decimal) string {
	return rate.StringFixed(10)
}

// Date formats t as dd/mm/yyyy.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(thousandsSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
