package bitpanda

import "github.com/shopspring/decimal"

// UnknownSymbol replaces an empty symbol in a wallet resource.
const UnknownSymbol = "UNKNOWN"

type walletsResponse struct {
	Data []walletResource `json:"data"`
}

type walletResource struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes walletAttributes `json:"attributes"`
}

type walletAttributes struct {
	CryptocoinSymbol string          `json:"cryptocoin_symbol"`
	FiatSymbol       string          `json:"fiat_symbol"`
	Balance          decimal.Decimal `json:"balance"`
	Name             string          `json:"name"`
	Deleted          bool            `json:"deleted"`
}

// Ticker maps an asset symbol to its price per quote currency.
type Ticker map[string]map[string]decimal.Decimal

// Price returns the price of symbol in quote.
func (t Ticker) Price(symbol, quote string) (decimal.Decimal, bool) {
	prices, ok := t[symbol]
	if !ok {
		return decimal.Zero, false
	}
	p, ok := prices[quote]
	return p, ok
}
