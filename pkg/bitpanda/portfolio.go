package bitpanda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bpdash/pkg/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Wallet is a normalized wallet balance.
type Wallet struct {
	Symbol  string
	Name    string
	Balance decimal.Decimal
}

// FetchWallets returns the crypto wallets.
func (c *Client) FetchWallets(ctx context.Context) ([]Wallet, error) {
	var resp walletsResponse
	if err := c.getJSON(ctx, "/wallets", &resp); err != nil {
		return nil, fmt.Errorf("fetching wallets: %w", err)
	}
	return toWallets(resp, func(a walletAttributes) string { return a.CryptocoinSymbol }), nil
}

// FetchFiatWallets returns the fiat wallets.
func (c *Client) FetchFiatWallets(ctx context.Context) ([]Wallet, error) {
	var resp walletsResponse
	if err := c.getJSON(ctx, "/fiatwallets", &resp); err != nil {
		return nil, fmt.Errorf("fetching fiat wallets: %w", err)
	}
	return toWallets(resp, func(a walletAttributes) string { return a.FiatSymbol }), nil
}

// FetchTicker returns current prices.
func (c *Client) FetchTicker(ctx context.Context) (Ticker, error) {
	var t Ticker
	if err := c.getJSON(ctx, "/ticker", &t); err != nil {
		return nil, fmt.Errorf("fetching ticker: %w", err)
	}
	return t, nil
}

// TestAuth checks that the key is accepted by an authenticated endpoint.
func (c *Client) TestAuth(ctx context.Context) error {
	_, err := c.get(ctx, "/fiatwallets")
	return err
}

// FetchPortfolio loads wallets, fiat wallets and the ticker and builds a
// snapshot valued in reference.
func (c *Client) FetchPortfolio(ctx context.Context, reference string) (*models.PortfolioSnapshot, error) {
	c.logger.Debug("loading portfolio", "reference", reference)
	wallets, err := c.FetchWallets(ctx)
	if err != nil {
		return nil, err
	}
	fiat, err := c.FetchFiatWallets(ctx)
	if err != nil {
		return nil, err
	}
	ticker, err := c.FetchTicker(ctx)
	if err != nil {
		return nil, err
	}
	snap := BuildSnapshot(wallets, fiat, ticker, reference)
	snap.FetchedAt = time.Now()
	return snap, nil
}

func toWallets(resp walletsResponse, symbolOf func(walletAttributes) string) []Wallet {
	live := lo.Filter(resp.Data, func(r walletResource, _ int) bool {
		return !r.Attributes.Deleted
	})
	return lo.Map(live, func(r walletResource, _ int) Wallet {
		sym := strings.ToUpper(strings.TrimSpace(symbolOf(r.Attributes)))
		if sym == "" {
			sym = UnknownSymbol
		}
		return Wallet{Symbol: sym, Name: r.Attributes.Name, Balance: r.Attributes.Balance}
	})
}

// BuildSnapshot keeps positive balances, values crypto at the ticker price
// in reference and adds reference currency fiat balances to the total.
// A crypto symbol missing from the ticker is valued at zero.
func BuildSnapshot(wallets, fiat []Wallet, ticker Ticker, reference string) *models.PortfolioSnapshot {
	reference = strings.ToUpper(reference)
	snap := &models.PortfolioSnapshot{
		CryptoHoldings:    []models.CryptoHolding{},
		FiatHoldings:      []models.FiatHolding{},
		ReferenceCurrency: reference,
	}

	total := decimal.Zero
	for _, w := range lo.Filter(wallets, positive) {
		price, _ := ticker.Price(w.Symbol, reference)
		value := w.Balance.Mul(price)
		snap.CryptoHoldings = append(snap.CryptoHoldings, models.CryptoHolding{
			Symbol:      w.Symbol,
			AmountHeld:  w.Balance,
			UnitPrice:   price,
			Value:       value,
			DisplayName: w.Name,
		})
		total = total.Add(value)
	}

	for _, w := range lo.Filter(fiat, positive) {
		snap.FiatHoldings = append(snap.FiatHoldings, models.FiatHolding{
			Symbol:      w.Symbol,
			Balance:     w.Balance,
			DisplayName: w.Name,
		})
		if w.Symbol == reference {
			total = total.Add(w.Balance)
		}
	}

	snap.TotalValue = total
	return snap
}

func positive(w Wallet, _ int) bool {
	return w.Balance.IsPositive()
}
