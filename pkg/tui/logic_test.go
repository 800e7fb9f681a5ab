package tui

import (
	"testing"
	"time"

	"bpdash/pkg/chart"
	"bpdash/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testSeries(values ...int64) chart.Series {
	s := chart.Series{Mode: chart.ModeTotal}
	for i, v := range values {
		sym := string(rune('A' + i))
		s.Slices = append(s.Slices, chart.Slice{Symbol: sym, Label: sym, Value: decimal.NewFromInt(v), Style: chart.StyleFor(sym)})
	}
	return s
}

func TestBarSegments(t *testing.T) {
	assert.Equal(t, []int{15, 5}, barSegments(testSeries(75, 25), 20))
	assert.Equal(t, []int{20, 0}, barSegments(testSeries(10, 0), 20))
	assert.Equal(t, []int{0, 0}, barSegments(testSeries(0, 0), 20))
	assert.Empty(t, barSegments(chart.Series{}, 20))

	// tiny slices still get a cell and the total width is preserved
	cells := barSegments(testSeries(1000, 1), 10)
	assert.Equal(t, 1, cells[1])
	assert.Equal(t, 10, cells[0]+cells[1])

	// more slices than cells never overflows the bar
	cells = barSegments(testSeries(1, 1, 1, 1, 1, 1, 1, 1, 1, 1), 5)
	assert.Equal(t, 5, sum(cells))
	for _, n := range cells {
		assert.LessOrEqual(t, n, 1)
	}
	cells = barSegments(testSeries(500, 1, 1, 1, 1, 1), 4)
	assert.Equal(t, 4, sum(cells))
	assert.Equal(t, 4, cells[0])

	// rounding up on every slice is taken back from the widest
	cells = barSegments(testSeries(50, 1, 1), 3)
	assert.Equal(t, []int{1, 1, 1}, cells)
}

func sum(cells []int) int {
	total := 0
	for _, n := range cells {
		total += n
	}
	return total
}

func TestPercentLabel(t *testing.T) {
	snap := &models.PortfolioSnapshot{
		CryptoHoldings:    []models.CryptoHolding{{Symbol: "BTC", Value: decimal.NewFromInt(1000)}},
		FiatHoldings:      []models.FiatHolding{{Symbol: "USD", Balance: decimal.NewFromInt(100)}},
		ReferenceCurrency: "EUR",
	}
	p := chart.NewProjector("EUR")
	p.Rate = chart.FixedRates(map[string]decimal.Decimal{"USD": decimal.RequireFromString("0.85")})
	s := p.Project(snap, chart.ModeTotal)

	assert.Equal(t, "92.2%", percentLabel(s, 0))
	assert.Equal(t, "7.8%", percentLabel(s, 1))
	assert.Equal(t, "-", percentLabel(testSeries(0), 0))
}

func TestSummaryText(t *testing.T) {
	s := testSeries(75, 25)

	text := summaryText(s, "EUR", false)
	assert.Contains(t, text, "2 Assets")
	assert.Contains(t, text, "75.0%")
	assert.Contains(t, text, "€100.00")

	masked := summaryText(s, "EUR", true)
	assert.Contains(t, masked, "****")
	assert.NotContains(t, masked, "€")
}

func TestSinceLabel(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", sinceLabel(now.Add(-2*time.Second), now))
	assert.Equal(t, "30s ago", sinceLabel(now.Add(-30*time.Second), now))
	assert.Equal(t, "5m ago", sinceLabel(now.Add(-5*time.Minute), now))
	assert.Equal(t, "10:00:00", sinceLabel(now.Add(-2*time.Hour), now))
}

func TestRecordHistoryCaps(t *testing.T) {
	m := model{}
	m.recordHistory()
	assert.Empty(t, m.history)

	m.state.Snapshot = &models.PortfolioSnapshot{TotalValue: decimal.NewFromInt(5)}
	for i := 0; i < maxHistory+10; i++ {
		m.recordHistory()
	}
	assert.Len(t, m.history, maxHistory)
	assert.Equal(t, 5.0, m.history[0])
}
