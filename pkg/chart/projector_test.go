package chart

import (
	"testing"

	"bpdash/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleSnapshot() *models.PortfolioSnapshot {
	return &models.PortfolioSnapshot{
		CryptoHoldings: []models.CryptoHolding{
			{Symbol: "BTC", AmountHeld: d("0.02"), UnitPrice: d("50000"), Value: d("1000")},
		},
		FiatHoldings: []models.FiatHolding{
			{Symbol: "USD", Balance: d("100")},
		},
		TotalValue:        d("1000"),
		ReferenceCurrency: "EUR",
	}
}

func TestProjectTotalExample(t *testing.T) {
	p := NewProjector("EUR")
	p.Rate = FixedRates(map[string]decimal.Decimal{"USD": d("0.85")})

	series := p.Project(sampleSnapshot(), ModeTotal)

	require.Len(t, series.Slices, 2)
	assert.Equal(t, "BTC", series.Slices[0].Label)
	assert.True(t, series.Slices[0].Value.Equal(d("1000")))
	assert.Equal(t, "USD", series.Slices[1].Label)
	assert.True(t, series.Slices[1].Value.Equal(d("85")))
	assert.True(t, series.Total().Equal(d("1085")))

	pct, err := series.Percent(0)
	require.NoError(t, err)
	assert.Equal(t, "92.2", pct.StringFixed(1))
}

func TestProjectUsesDefaultApproximateTable(t *testing.T) {
	series := NewProjector("EUR").Project(sampleSnapshot(), ModeFiatOnly)
	require.Len(t, series.Slices, 1)
	assert.True(t, series.Slices[0].Value.Equal(d("85")), "got %s", series.Slices[0].Value)
}

func TestProjectPrefersSnapshotReferenceCurrency(t *testing.T) {
	snap := &models.PortfolioSnapshot{
		FiatHoldings: []models.FiatHolding{
			{Symbol: "USD", Balance: d("100")},
			{Symbol: "EUR", Balance: d("85")},
		},
		ReferenceCurrency: "USD",
	}
	p := NewProjector("EUR")
	p.Rate = FixedRates(map[string]decimal.Decimal{"USD": d("0.85")})

	series := p.Project(snap, ModeFiatOnly)
	require.Len(t, series.Slices, 2)
	assert.True(t, series.Slices[0].Value.Equal(d("100")), "got %s", series.Slices[0].Value)
	assert.Equal(t, "100.00", series.Slices[1].Value.StringFixed(2))

	// without a snapshot currency the configured one applies
	snap.ReferenceCurrency = ""
	series = p.Project(snap, ModeFiatOnly)
	assert.True(t, series.Slices[0].Value.Equal(d("85")), "got %s", series.Slices[0].Value)
	assert.True(t, series.Slices[1].Value.Equal(d("85")))
}

func TestProjectModes(t *testing.T) {
	snap := sampleSnapshot()
	snap.CryptoHoldings = append(snap.CryptoHoldings, models.CryptoHolding{Symbol: "ETH", Value: d("500")})
	snap.FiatHoldings = append(snap.FiatHoldings, models.FiatHolding{Symbol: "EUR", Balance: d("20")})
	p := NewProjector("EUR")

	crypto := p.Project(snap, ModeCryptoOnly)
	assert.Equal(t, []string{"BTC", "ETH"}, labels(crypto))

	fiat := p.Project(snap, ModeFiatOnly)
	assert.Equal(t, []string{"USD", "EUR"}, labels(fiat))
	assert.True(t, fiat.Slices[1].Value.Equal(d("20")), "reference currency balance is taken as is")

	total := p.Project(snap, ModeTotal)
	assert.Equal(t, []string{"BTC", "ETH", "USD", "EUR"}, labels(total))
}

func TestProjectCryptoValueNotRecomputed(t *testing.T) {
	snap := &models.PortfolioSnapshot{CryptoHoldings: []models.CryptoHolding{
		{Symbol: "ETH", AmountHeld: d("2"), UnitPrice: d("1000"), Value: d("1999.99")},
	}}
	series := NewProjector("EUR").Project(snap, ModeTotal)
	assert.True(t, series.Slices[0].Value.Equal(d("1999.99")))
}

func TestProjectKeepsZeroSlices(t *testing.T) {
	snap := &models.PortfolioSnapshot{
		CryptoHoldings: []models.CryptoHolding{{Symbol: "BTC", Value: decimal.Zero}},
		FiatHoldings:   []models.FiatHolding{{Symbol: "EUR", Balance: d("10")}},
	}
	series := NewProjector("EUR").Project(snap, ModeTotal)
	require.Len(t, series.Slices, 2)

	pct, err := series.Percent(0)
	require.NoError(t, err)
	assert.True(t, pct.IsZero())
}

func TestProjectUnknownRateKeepsBalance(t *testing.T) {
	snap := &models.PortfolioSnapshot{FiatHoldings: []models.FiatHolding{{Symbol: "XAU", Balance: d("3")}}}
	series := NewProjector("EUR").Project(snap, ModeFiatOnly)
	assert.True(t, series.Slices[0].Value.Equal(d("3")))
}

func TestProjectNilAndEmptySnapshot(t *testing.T) {
	p := NewProjector("EUR")
	for _, mode := range []ViewMode{ModeTotal, ModeCryptoOnly, ModeFiatOnly} {
		nilSeries := p.Project(nil, mode)
		assert.Empty(t, nilSeries.Slices)
		assert.True(t, nilSeries.Empty())

		empty := p.Project(&models.PortfolioSnapshot{}, mode)
		assert.Empty(t, empty.Slices)
		assert.True(t, empty.Total().IsZero())
	}
}

func TestPercentEmptyState(t *testing.T) {
	series := Series{Slices: []Slice{{Symbol: "BTC", Value: decimal.Zero}}}
	_, err := series.Percent(0)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = Series{}.Percent(0)
	assert.Error(t, err)
}

func TestPercentFollowsModeDenominator(t *testing.T) {
	snap := sampleSnapshot()
	snap.CryptoHoldings = append(snap.CryptoHoldings, models.CryptoHolding{Symbol: "ETH", Value: d("1000")})
	p := NewProjector("EUR")

	crypto := p.Project(snap, ModeCryptoOnly)
	pct, err := crypto.Percent(0)
	require.NoError(t, err)
	assert.Equal(t, "50.0", pct.StringFixed(1))

	total := p.Project(snap, ModeTotal)
	pct, err = total.Percent(0)
	require.NoError(t, err)
	assert.Equal(t, "48.0", pct.StringFixed(1))
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, "#F7931A", StyleFor("BTC").FillColor)
	assert.Equal(t, StyleFor("btc"), StyleFor(" BTC "))
	assert.Equal(t, FallbackStyle(), StyleFor("NOPE"))
	assert.Equal(t, DefaultStroke, StyleFor("NOPE").StrokeColor)
}

func TestApproximateRatesCrossReference(t *testing.T) {
	rate := ApproximateRates("USD")
	r, ok := rate("USD")
	assert.True(t, ok)
	assert.True(t, r.Equal(decimal.NewFromInt(1)))

	r, ok = rate("EUR")
	assert.True(t, ok)
	assert.Equal(t, "1.18", r.StringFixed(2))

	_, ok = ApproximateRates("XXX")("EUR")
	assert.False(t, ok)
}

func labels(s Series) []string {
	out := make([]string, 0, len(s.Slices))
	for _, sl := range s.Slices {
		out = append(out, sl.Label)
	}
	return out
}
