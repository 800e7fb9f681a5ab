package chart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateFunc converts one unit of a fiat symbol into the reference currency.
// ok is false when no rate is known for symbol.
type RateFunc func(symbol string) (rate decimal.Decimal, ok bool)

// approximateEURValue is the rough value of one unit of each currency in EUR.
// APPROXIMATE: these are fixed numbers for sizing chart slices, not exchange
// rates. Totals always come from the provider.
var approximateEURValue = map[string]decimal.Decimal{
	"EUR": decimal.NewFromInt(1),
	"USD": decimal.RequireFromString("0.85"),
	"GBP": decimal.RequireFromString("1.17"),
	"CHF": decimal.RequireFromString("1.05"),
	"PLN": decimal.RequireFromString("0.23"),
	"TRY": decimal.RequireFromString("0.027"),
	"HUF": decimal.RequireFromString("0.0025"),
	"CZK": decimal.RequireFromString("0.04"),
	"SEK": decimal.RequireFromString("0.088"),
	"DKK": decimal.RequireFromString("0.134"),
}

// ApproximateRates returns a RateFunc over the static table, expressed in
// reference. Symbols missing from the table, or a reference currency missing
// from it, yield ok=false.
func ApproximateRates(reference string) RateFunc {
	ref := strings.ToUpper(strings.TrimSpace(reference))
	return func(symbol string) (decimal.Decimal, bool) {
		sym := strings.ToUpper(strings.TrimSpace(symbol))
		if sym == ref {
			return decimal.NewFromInt(1), true
		}
		refEUR, ok := approximateEURValue[ref]
		if !ok {
			return decimal.Zero, false
		}
		symEUR, ok := approximateEURValue[sym]
		if !ok {
			return decimal.Zero, false
		}
		return symEUR.DivRound(refEUR, 8), true
	}
}

// FixedRates builds a RateFunc from an explicit table. Used to swap in
// another source without touching the projector.
func FixedRates(table map[string]decimal.Decimal) RateFunc {
	upper := make(map[string]decimal.Decimal, len(table))
	for k, v := range table {
		upper[strings.ToUpper(k)] = v
	}
	return func(symbol string) (decimal.Decimal, bool) {
		r, ok := upper[strings.ToUpper(strings.TrimSpace(symbol))]
		return r, ok
	}
}
