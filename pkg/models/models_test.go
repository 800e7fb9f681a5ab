package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    *PortfolioSnapshot
		wantErr bool
	}{
		{"nil snapshot", nil, false},
		{"empty snapshot", &PortfolioSnapshot{}, false},
		{"zero values", &PortfolioSnapshot{
			CryptoHoldings: []CryptoHolding{{Symbol: "BTC", Value: decimal.Zero}},
			FiatHoldings:   []FiatHolding{{Symbol: "EUR", Balance: decimal.Zero}},
		}, false},
		{"negative crypto", &PortfolioSnapshot{
			CryptoHoldings: []CryptoHolding{{Symbol: "BTC", Value: decimal.NewFromInt(-1)}},
		}, true},
		{"negative fiat", &PortfolioSnapshot{
			FiatHoldings: []FiatHolding{{Symbol: "EUR", Balance: decimal.NewFromFloat(-0.01)}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNegativeHolding)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssetCount(t *testing.T) {
	var nilSnap *PortfolioSnapshot
	assert.Equal(t, 0, nilSnap.AssetCount())

	s := &PortfolioSnapshot{
		CryptoHoldings: []CryptoHolding{{Symbol: "BTC"}, {Symbol: "ETH"}},
		FiatHoldings:   []FiatHolding{{Symbol: "EUR"}},
	}
	assert.Equal(t, 3, s.AssetCount())
}

func TestCloneIsIndependent(t *testing.T) {
	s := &PortfolioSnapshot{
		CryptoHoldings: []CryptoHolding{{Symbol: "BTC", Value: decimal.NewFromInt(1)}},
		FiatHoldings:   []FiatHolding{{Symbol: "EUR", Balance: decimal.NewFromInt(2)}},
	}
	cp := s.Clone()
	cp.CryptoHoldings[0].Symbol = "ETH"
	cp.FiatHoldings = append(cp.FiatHoldings, FiatHolding{Symbol: "USD"})

	assert.Equal(t, "BTC", s.CryptoHoldings[0].Symbol)
	assert.Len(t, s.FiatHoldings, 1)

	var nilSnap *PortfolioSnapshot
	assert.Nil(t, nilSnap.Clone())
}

func TestSnapshotWireFormat(t *testing.T) {
	raw := `{
		"crypto_holdings":[{"symbol":"BTC","amount_held":"0.5","unit_price":"40000","value":"20000","change_24h_percent":"-1.5"}],
		"fiat_holdings":[{"symbol":"EUR","balance":"12.34"}],
		"total_value":"20012.34",
		"is_demo_data":true,
		"reference_currency":"EUR"
	}`
	var s PortfolioSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	require.Len(t, s.CryptoHoldings, 1)
	assert.True(t, s.CryptoHoldings[0].Value.Equal(decimal.NewFromInt(20000)))
	assert.Nil(t, s.CryptoHoldings[0].Change24h)
	require.NotNil(t, s.CryptoHoldings[0].Change24hPercent)
	assert.Equal(t, "-1.5", s.CryptoHoldings[0].Change24hPercent.String())
	assert.True(t, s.IsDemoData)
	assert.Nil(t, s.TotalChange24h)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"total_value":"20012.34"`)
	assert.NotContains(t, string(out), "total_change_24h")
}

func TestSnapshotMissingHoldingsDecodeAsEmpty(t *testing.T) {
	var s PortfolioSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"total_value":"0"}`), &s))
	assert.Equal(t, 0, s.AssetCount())
	assert.NoError(t, s.Validate())
}
