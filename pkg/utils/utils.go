package utils

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MaskedValue replaces amounts while privacy mode is on.
const MaskedValue = "****"

func TruncateString(str string, num int) string {
	if len(str) <= num {
		return str
	}
	if num <= 3 {
		return str[:num]
	}
	return str[0:num-3] + "..."
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

// FormatDecimal rounds d to decimals places and groups thousands.
func FormatDecimal(d decimal.Decimal, decimals int) string {
	return AddCommas(d.StringFixed(int32(decimals)))
}

// FormatMoney renders d in currency with its symbol and minor units, e.g.
// "€1,234.50". Unknown currency codes fall back to "1,234.50 XYZ".
func FormatMoney(d decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return FormatDecimal(d, 2) + " " + currency
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// FormatPercent renders p with one decimal place and a percent sign.
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}

// FormatSignedPercent is FormatPercent with an explicit plus sign.
func FormatSignedPercent(p decimal.Decimal) string {
	if p.IsPositive() {
		return "+" + FormatPercent(p)
	}
	return FormatPercent(p)
}

// Pluralize returns "1 Asset" or "n Assets".
func Pluralize(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

// Mask returns MaskedValue when hidden is set.
func Mask(s string, hidden bool) string {
	if hidden {
		return MaskedValue
	}
	return s
}
