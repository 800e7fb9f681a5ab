// Package report renders one-shot portfolio reports for the terminal and
// for spreadsheets.
package report

import (
	"fmt"
	"strings"

	"bpdash/pkg/chart"
	"bpdash/pkg/models"
	"bpdash/pkg/utils"

	"github.com/charmbracelet/glamour"
)

// Options controls number formatting.
type Options struct {
	FiatDecimals   int
	CryptoDecimals int
}

// DefaultOptions matches the configuration defaults.
var DefaultOptions = Options{FiatDecimals: 2, CryptoDecimals: 8}

// Markdown renders snap and the allocation of series as a markdown document.
func Markdown(snap *models.PortfolioSnapshot, series chart.Series, opts Options) string {
	var b strings.Builder
	b.WriteString("# Portfolio report\n\n")

	if snap == nil {
		b.WriteString("_No portfolio data._\n")
		return b.String()
	}

	ref := snap.ReferenceCurrency
	fmt.Fprintf(&b, "**Total value:** %s  \n", utils.FormatMoney(snap.TotalValue, ref))
	if snap.TotalChange24h != nil {
		line := utils.FormatMoney(*snap.TotalChange24h, ref)
		if snap.TotalChange24hPercent != nil {
			line += " (" + utils.FormatSignedPercent(*snap.TotalChange24hPercent) + ")"
		}
		fmt.Fprintf(&b, "**24h change:** %s  \n", line)
	}
	fmt.Fprintf(&b, "**Holdings:** %s", utils.Pluralize(snap.AssetCount(), "Asset"))
	if snap.IsDemoData {
		b.WriteString(" · _demo data_")
	}
	b.WriteString("\n\n")

	if len(snap.CryptoHoldings) > 0 {
		b.WriteString("## Crypto\n\n")
		b.WriteString("| Symbol | Name | Amount | Price | Value |\n")
		b.WriteString("|---|---|---:|---:|---:|\n")
		for _, h := range snap.CryptoHoldings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				h.Symbol,
				escape(h.DisplayName),
				utils.FormatDecimal(h.AmountHeld, opts.CryptoDecimals),
				utils.FormatMoney(h.UnitPrice, ref),
				utils.FormatMoney(h.Value, ref),
			)
		}
		b.WriteString("\n")
	}

	if len(snap.FiatHoldings) > 0 {
		b.WriteString("## Fiat\n\n")
		b.WriteString("| Currency | Balance |\n")
		b.WriteString("|---|---:|\n")
		for _, h := range snap.FiatHoldings {
			fmt.Fprintf(&b, "| %s | %s |\n", h.Symbol, utils.FormatDecimal(h.Balance, opts.FiatDecimals))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Allocation (%s)\n\n", series.Mode)
	if series.Empty() {
		b.WriteString("_Nothing to allocate._\n")
		return b.String()
	}
	b.WriteString("| Asset | Value | Share |\n")
	b.WriteString("|---|---:|---:|\n")
	for i, sl := range series.Slices {
		share := "n/a"
		if pct, err := series.Percent(i); err == nil {
			share = utils.FormatPercent(pct)
		}
		fmt.Fprintf(&b, "| %s %s | %s | %s |\n", sl.Marker, sl.Label, utils.FormatMoney(sl.Value, ref), share)
	}
	fmt.Fprintf(&b, "\nChart total: %s. Non-%s fiat is sized with approximate rates.\n",
		utils.FormatMoney(series.Total(), ref), ref)
	return b.String()
}

// Render formats markdown for a terminal of the given width.
func Render(md, style string, width int) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
