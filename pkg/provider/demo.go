package provider

import (
	"context"
	"strings"
	"time"

	"bpdash/pkg/models"

	"github.com/shopspring/decimal"
)

// Demo serves a fixed sample portfolio.
type Demo struct {
	reference string
	now       func() time.Time
}

func NewDemo(reference string) *Demo {
	if reference == "" {
		reference = "EUR"
	}
	return &Demo{reference: strings.ToUpper(reference), now: time.Now}
}

func (d *Demo) Name() string { return "demo" }

type demoCoin struct {
	symbol, name, amount, price, changePct string
}

var demoCoins = []demoCoin{
	{"BTC", "Bitcoin", "0.15", "58000", "2.4"},
	{"ETH", "Ethereum", "2.5", "3100", "-1.2"},
	{"SOL", "Solana", "40", "140", "5.1"},
	{"BEST", "Bitpanda Ecosystem Token", "1500", "0.45", "0.3"},
}

var demoFiat = []struct{ symbol, name, balance string }{
	{"EUR", "Euro", "1250.50"},
	{"USD", "US Dollar", "300"},
}

func (d *Demo) FetchSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := &models.PortfolioSnapshot{
		IsDemoData:        true,
		ReferenceCurrency: d.reference,
		FetchedAt:         d.now(),
	}

	total := decimal.Zero
	change := decimal.Zero
	for _, c := range demoCoins {
		amount := decimal.RequireFromString(c.amount)
		price := decimal.RequireFromString(c.price)
		value := amount.Mul(price)
		pct := decimal.RequireFromString(c.changePct)
		abs := value.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
		snap.CryptoHoldings = append(snap.CryptoHoldings, models.CryptoHolding{
			Symbol:           c.symbol,
			DisplayName:      c.name,
			AmountHeld:       amount,
			UnitPrice:        price,
			Value:            value,
			Change24h:        &abs,
			Change24hPercent: &pct,
		})
		total = total.Add(value)
		change = change.Add(abs)
	}
	for _, f := range demoFiat {
		bal := decimal.RequireFromString(f.balance)
		snap.FiatHoldings = append(snap.FiatHoldings, models.FiatHolding{
			Symbol:      f.symbol,
			DisplayName: f.name,
			Balance:     bal,
		})
		if f.symbol == d.reference {
			total = total.Add(bal)
		}
	}

	snap.TotalValue = total
	snap.TotalChange24h = &change
	if prev := total.Sub(change); prev.IsPositive() {
		pct := change.Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
		snap.TotalChange24hPercent = &pct
	}
	return snap, nil
}

func (d *Demo) FetchUserInfo(ctx context.Context) (models.UserInfo, error) {
	return models.UserInfo{Username: "demo", IsDemo: true}, nil
}

func (d *Demo) Logout(ctx context.Context) error { return nil }
