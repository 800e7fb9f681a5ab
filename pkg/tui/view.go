package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"bpdash/pkg/chart"
	"bpdash/pkg/refresh"
	"bpdash/pkg/utils"
)

func (m model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}
	if m.showGraph {
		return m.viewGraph()
	}

	var content string
	switch m.state.Phase {
	case refresh.PhaseReady:
		content = m.viewReady()
	case refresh.PhaseFailed:
		content = m.viewFailed()
	default:
		content = m.viewLoading()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), "", content, "", m.viewFooter())
}

func (m model) viewHeader() string {
	header := m.styles.title.Render(fmt.Sprintf("Bitpanda Portfolio %s", Version))
	if m.state.Snapshot != nil && m.state.Snapshot.IsDemoData && m.state.Phase == refresh.PhaseReady {
		header += " " + m.styles.badge.Render("DEMO DATA")
	}
	if m.userInfo.Username != "" {
		header += " " + m.styles.subtle.Render("@"+m.maskString(m.userInfo.Username))
	}
	return header
}

func (m model) viewLoading() string {
	return m.styles.box.Render(fmt.Sprintf("%s Loading portfolio...", m.spinner.View()))
}

func (m model) viewFailed() string {
	return m.styles.box.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.err.Render(m.state.Message),
		"",
		m.styles.subtle.Render("Press r to retry"),
	))
}

func (m model) viewReady() string {
	series := m.series()
	ref := m.referenceCurrency()

	summary := fmt.Sprintf("%s • Total: %s",
		utils.Pluralize(len(series.Slices), "Asset"),
		m.displayMoney(series.Total(), ref))
	if snap := m.state.Snapshot; snap != nil && snap.TotalChange24hPercent != nil && m.selector.Mode() == chart.ModeTotal {
		change := utils.FormatSignedPercent(*snap.TotalChange24hPercent)
		if snap.TotalChange24hPercent.IsNegative() {
			change = m.styles.negative.Render(change)
		} else {
			change = m.styles.positive.Render(change)
		}
		summary += " • 24h " + change
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewModeTabs(),
		"",
		m.styles.info.Render(summary),
		"",
		m.viewAllocation(series),
		"",
		m.viewport.View(),
	)
}

func (m model) viewModeTabs() string {
	modes := []chart.ViewMode{chart.ModeTotal, chart.ModeCryptoOnly, chart.ModeFiatOnly}
	tabs := make([]string, 0, len(modes))
	for i, mode := range modes {
		label := fmt.Sprintf("%d %s", i+1, mode)
		if mode == m.selector.Mode() {
			tabs = append(tabs, m.styles.activeTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewAllocation draws the proportional bar and its legend.
func (m model) viewAllocation(series chart.Series) string {
	if series.Empty() {
		return m.styles.subtle.Render("No holdings to chart in this view.")
	}

	width := max(m.width-4, 20)
	cells := barSegments(series, width)
	var bar strings.Builder
	for i, sl := range series.Slices {
		if cells[i] == 0 {
			continue
		}
		bar.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(sl.FillColor)).Render(strings.Repeat("█", cells[i])))
	}

	legend := make([]string, 0, len(series.Slices))
	for i, sl := range series.Slices {
		marker := lipgloss.NewStyle().Foreground(lipgloss.Color(sl.FillColor)).Render(sl.Marker)
		legend = append(legend, fmt.Sprintf("%s %s %s", marker, sl.Label, percentLabel(series, i)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, bar.String(), lipgloss.NewStyle().Width(width).Render(strings.Join(legend, "  ")))
}

// updateViewport renders the holdings lists into the scrollable area.
func (m *model) updateViewport() {
	m.viewport.SetContent(m.holdingsContent())
}

func (m model) holdingsContent() string {
	snap := m.state.Snapshot
	if snap == nil {
		return ""
	}
	ref := m.referenceCurrency()
	mode := m.selector.Mode()
	var sections []string

	if mode != chart.ModeFiatOnly {
		rows := []string{m.styles.tableHeader.Render(fmt.Sprintf("%-8s %-16s %18s %14s %14s %8s", "Crypto", "Name", "Amount", "Price", "Value", "24h"))}
		for _, h := range snap.CryptoHoldings {
			change := ""
			if h.Change24hPercent != nil {
				change = utils.FormatSignedPercent(*h.Change24hPercent)
			}
			rows = append(rows, fmt.Sprintf(" %-8s %-16s %18s %14s %14s %8s",
				h.Symbol,
				utils.TruncateString(h.DisplayName, 16),
				m.displayAmount(h.AmountHeld, m.config.CryptoDecimals),
				utils.FormatMoney(h.UnitPrice, ref),
				m.displayMoney(h.Value, ref),
				change,
			))
		}
		if len(snap.CryptoHoldings) == 0 {
			rows = append(rows, m.styles.subtle.Render(" No crypto holdings"))
		}
		sections = append(sections, strings.Join(rows, "\n"))
	}

	if mode != chart.ModeCryptoOnly {
		rows := []string{m.styles.tableHeader.Render(fmt.Sprintf("%-8s %-16s %18s", "Fiat", "Name", "Balance"))}
		for _, h := range snap.FiatHoldings {
			rows = append(rows, fmt.Sprintf(" %-8s %-16s %18s",
				h.Symbol,
				utils.TruncateString(h.DisplayName, 16),
				m.displayMoney(h.Balance, h.Symbol),
			))
		}
		if len(snap.FiatHoldings) == 0 {
			rows = append(rows, m.styles.subtle.Render(" No fiat holdings"))
		}
		sections = append(sections, strings.Join(rows, "\n"))
	}

	return strings.Join(sections, "\n\n")
}

func (m model) viewFooter() string {
	if m.statusMessage != "" {
		return m.styles.info.Render(m.statusMessage)
	}
	var parts []string
	if m.state.LastSuccessfulUpdate != nil {
		parts = append(parts, "Updated "+sinceLabel(*m.state.LastSuccessfulUpdate, m.now))
	}
	if m.privacyMode {
		parts = append(parts, "privacy on")
	}
	parts = append(parts, "r: refresh • m: view • g: graph • ?: help • q: quit")
	return m.styles.subtle.Render(strings.Join(parts, " • "))
}

func (m model) viewGraph() string {
	var graph string
	if m.privacyMode {
		graph = "Graph hidden in Privacy Mode."
	} else if len(m.history) > 1 {
		width := max(m.width-20, 10)
		graph = asciigraph.Plot(m.history,
			asciigraph.Height(max(m.height-12, 5)),
			asciigraph.Width(width),
			asciigraph.Caption(fmt.Sprintf("Portfolio Value History (%s)", m.referenceCurrency())),
		)
	} else {
		graph = "Not enough data to draw graph."
	}

	content := m.styles.box.Render(lipgloss.JoinVertical(lipgloss.Center, m.styles.title.Render("Value History"), "\n", graph))
	footer := m.styles.subtle.Render("g/q/esc: back")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer))
}

func (m model) viewHelp() string {
	shortcuts := []string{
		"r: Refresh / Retry",
		"m: Cycle View Mode",
		"1/2/3: Total / Crypto / Fiat",
		"g: Value History Graph",
		"↑/k ↓/j: Scroll Holdings",
		"c: Copy Summary",
		"P: Toggle Privacy",
		"T: Toggle Theme",
		"L: Logout and Quit",
		"q/ctrl+c: Quit",
		"?: Toggle Help",
	}

	header := m.styles.title.Render("Help: Dashboard")
	content := m.styles.box.Render(lipgloss.JoinVertical(lipgloss.Left, header, "\n", strings.Join(shortcuts, "\n")))
	footer := m.styles.subtle.Render("Press '?' or 'esc' to close")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer),
	)
}
