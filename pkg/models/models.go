package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNegativeHolding is returned by Validate when a holding carries a negative amount.
var ErrNegativeHolding = errors.New("holding has a negative value")

// CryptoHolding holds one crypto wallet position, valued in the reference currency.
type CryptoHolding struct {
	Symbol           string           `json:"symbol"`
	AmountHeld       decimal.Decimal  `json:"amount_held"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	Value            decimal.Decimal  `json:"value"`
	DisplayName      string           `json:"display_name,omitempty"`
	LogoURL          string           `json:"logo_url,omitempty"`
	Change24h        *decimal.Decimal `json:"change_24h,omitempty"`
	Change24hPercent *decimal.Decimal `json:"change_24h_percent,omitempty"`
}

// FiatHolding holds one fiat wallet balance in its own currency.
type FiatHolding struct {
	Symbol      string          `json:"symbol"`
	Balance     decimal.Decimal `json:"balance"`
	DisplayName string          `json:"display_name,omitempty"`
}

// PortfolioSnapshot is one complete portfolio read at a point in time.
// A nil *PortfolioSnapshot means no data has been fetched yet; empty
// holdings are a valid, distinct state.
type PortfolioSnapshot struct {
	CryptoHoldings        []CryptoHolding  `json:"crypto_holdings"`
	FiatHoldings          []FiatHolding    `json:"fiat_holdings"`
	TotalValue            decimal.Decimal  `json:"total_value"`
	TotalChange24h        *decimal.Decimal `json:"total_change_24h,omitempty"`
	TotalChange24hPercent *decimal.Decimal `json:"total_change_24h_percent,omitempty"`
	IsDemoData            bool             `json:"is_demo_data"`
	ReferenceCurrency     string           `json:"reference_currency"`
	FetchedAt             time.Time        `json:"fetched_at"`
}

// Validate checks that no holding carries a negative amount.
func (s *PortfolioSnapshot) Validate() error {
	if s == nil {
		return nil
	}
	for _, c := range s.CryptoHoldings {
		if c.Value.IsNegative() {
			return fmt.Errorf("%w: crypto %s value %s", ErrNegativeHolding, c.Symbol, c.Value)
		}
	}
	for _, f := range s.FiatHoldings {
		if f.Balance.IsNegative() {
			return fmt.Errorf("%w: fiat %s balance %s", ErrNegativeHolding, f.Symbol, f.Balance)
		}
	}
	return nil
}

// AssetCount returns the number of holdings across both sequences.
func (s *PortfolioSnapshot) AssetCount() int {
	if s == nil {
		return 0
	}
	return len(s.CryptoHoldings) + len(s.FiatHoldings)
}

// Clone returns a copy that shares no slices with s.
func (s *PortfolioSnapshot) Clone() *PortfolioSnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.CryptoHoldings = append([]CryptoHolding(nil), s.CryptoHoldings...)
	cp.FiatHoldings = append([]FiatHolding(nil), s.FiatHoldings...)
	return &cp
}

// UserInfo is optional enrichment shown in the dashboard header.
type UserInfo struct {
	Username string `json:"username"`
	IsDemo   bool   `json:"is_demo"`
}

// HealthStatus is the body of the service health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ProviderResult holds connectivity results for one provider probe.
type ProviderResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok" or "error"
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CheckReport holds the results of the configuration check.
type CheckReport struct {
	ConfigPath        string           `json:"config_path"`
	ValidStructure    bool             `json:"valid_structure"`
	StructureErrors   []string         `json:"structure_errors,omitempty"`
	ReferenceCurrency string           `json:"reference_currency"`
	ProviderKind      string           `json:"provider_kind"`
	Providers         []ProviderResult `json:"providers,omitempty"`
	AssetCount        int              `json:"asset_count"`
}
