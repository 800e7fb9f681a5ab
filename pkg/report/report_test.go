package report

import (
	"path/filepath"
	"strings"
	"testing"

	"bpdash/pkg/chart"
	"bpdash/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() *models.PortfolioSnapshot {
	return &models.PortfolioSnapshot{
		CryptoHoldings: []models.CryptoHolding{{
			Symbol: "BTC", DisplayName: "Bitcoin",
			AmountHeld: decimal.RequireFromString("0.025"),
			UnitPrice:  decimal.NewFromInt(40000),
			Value:      decimal.NewFromInt(1000),
		}},
		FiatHoldings:      []models.FiatHolding{{Symbol: "USD", Balance: decimal.NewFromInt(100)}},
		TotalValue:        decimal.NewFromInt(1000),
		ReferenceCurrency: "EUR",
		IsDemoData:        true,
	}
}

func TestMarkdown(t *testing.T) {
	p := chart.NewProjector("EUR")
	md := Markdown(sample(), p.Project(sample(), chart.ModeTotal), DefaultOptions)

	assert.Contains(t, md, "# Portfolio report")
	assert.Contains(t, md, "€1,000.00")
	assert.Contains(t, md, "2 Assets")
	assert.Contains(t, md, "_demo data_")
	assert.Contains(t, md, "| BTC | Bitcoin | 0.02500000 |")
	assert.Contains(t, md, "| USD | 100.00 |")
	assert.Contains(t, md, "## Allocation (Total)")
	assert.Contains(t, md, "92.2%")
	assert.Contains(t, md, "€1,085.00")
}

func TestMarkdownEmpty(t *testing.T) {
	assert.Contains(t, Markdown(nil, chart.Series{}, DefaultOptions), "No portfolio data")

	empty := &models.PortfolioSnapshot{ReferenceCurrency: "EUR"}
	md := Markdown(empty, chart.NewProjector("EUR").Project(empty, chart.ModeCryptoOnly), DefaultOptions)
	assert.Contains(t, md, "0 Assets")
	assert.Contains(t, md, "Nothing to allocate")
	assert.NotContains(t, md, "## Crypto")
}

func TestRender(t *testing.T) {
	out, err := Render("# Title\n\nhello", "notty", 60)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "hello"))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.xlsx")
	require.NoError(t, WriteXLSX(path, sample(), chart.NewProjector("EUR")))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Holdings", "Allocation"}, f.GetSheetList())

	holdings, err := f.GetRows("Holdings")
	require.NoError(t, err)
	require.Len(t, holdings, 4)
	assert.Equal(t, "Type", holdings[0][0])
	assert.Equal(t, "BTC", holdings[1][1])
	assert.Equal(t, "fiat", holdings[2][0])

	alloc, err := f.GetRows("Allocation")
	require.NoError(t, err)
	// header + 2 total + 1 crypto + 1 fiat
	require.Len(t, alloc, 5)
	assert.Equal(t, "Total", alloc[1][0])
	assert.Equal(t, "Crypto", alloc[3][0])
	assert.Equal(t, "Fiat", alloc[4][0])
}

func TestWriteXLSXNoSnapshot(t *testing.T) {
	assert.Error(t, WriteXLSX(filepath.Join(t.TempDir(), "x.xlsx"), nil, chart.NewProjector("EUR")))
}
