package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bpdash/pkg/chart"
	"bpdash/pkg/provider"
	"bpdash/pkg/refresh"
	"bpdash/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

const logoutTimeout = 5 * time.Second

// listenForController waits for the next controller event. A closed
// subscription ends the loop.
func listenForController(sub refresh.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

func refreshManual(ctx context.Context, ctrl *refresh.Controller) tea.Cmd {
	return func() tea.Msg {
		return manualRefreshDoneMsg{err: ctrl.RefreshManual(ctx)}
	}
}

func fetchUserInfo(ctx context.Context, src provider.Source) tea.Cmd {
	return func() tea.Msg {
		info, err := src.FetchUserInfo(ctx)
		return userInfoMsg{info: info, err: err}
	}
}

// logout runs with its own deadline so a slow service cannot hold the exit.
func logout(src provider.Source) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return logoutDoneMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		defer cancel()
		return logoutDoneMsg{err: src.Logout(ctx)}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// series projects the current snapshot for the active view mode.
func (m model) series() chart.Series {
	return m.projector.Project(m.state.Snapshot, m.selector.Mode())
}

func (m model) referenceCurrency() string {
	if m.state.Snapshot != nil && m.state.Snapshot.ReferenceCurrency != "" {
		return m.state.Snapshot.ReferenceCurrency
	}
	return m.projector.ReferenceCurrency
}

// recordHistory appends the snapshot total after a successful refresh.
func (m *model) recordHistory() {
	if m.state.Snapshot == nil {
		return
	}
	v, _ := m.state.Snapshot.TotalValue.Float64()
	m.history = append(m.history, v)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

// barSegments apportions width cells across the series. The cells always
// sum to width. Every slice with a positive share gets at least one cell while
// there are enough cells to go round; otherwise small slices may get none and
// are left to the legend.
func barSegments(s chart.Series, width int) []int {
	cells := make([]int, len(s.Slices))
	if width <= 0 || s.Empty() {
		return cells
	}
	positive := 0
	for _, sl := range s.Slices {
		if sl.Value.Sign() > 0 {
			positive++
		}
	}
	minCells := 0
	if positive <= width {
		minCells = 1
	}

	total := s.Total()
	used, largest := 0, -1
	for i, sl := range s.Slices {
		if sl.Value.Sign() <= 0 {
			continue
		}
		n := int(sl.Value.Div(total).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart())
		if n < minCells {
			n = minCells
		}
		cells[i] = n
		used += n
		if largest < 0 || sl.Value.GreaterThan(s.Slices[largest].Value) {
			largest = i
		}
	}
	if used < width {
		cells[largest] += width - used
		return cells
	}
	// over budget: take cells back from the widest segments
	for used > width {
		widest := -1
		for i, n := range cells {
			if n > minCells && (widest < 0 || n > cells[widest]) {
				widest = i
			}
		}
		cells[widest]--
		used--
	}
	return cells
}

// percentLabel is the tooltip text for slice i, or "-" for an empty series.
func percentLabel(s chart.Series, i int) string {
	p, err := s.Percent(i)
	if err != nil {
		return "-"
	}
	return utils.FormatPercent(p)
}

// summaryText is the plain-text portfolio summary copied to the clipboard.
func summaryText(s chart.Series, currency string, hidden bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio (%s view): %s, %s\n",
		s.Mode, utils.Pluralize(len(s.Slices), "Asset"),
		utils.Mask(utils.FormatMoney(s.Total(), currency), hidden))
	for i, sl := range s.Slices {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", sl.Label,
			utils.Mask(utils.FormatMoney(sl.Value, currency), hidden), percentLabel(s, i))
	}
	return b.String()
}

// sinceLabel renders how long ago t was, in coarse units.
func sinceLabel(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return t.Format("15:04:05")
}
