package tui

import (
	"bpdash/pkg/prefs"

	"github.com/charmbracelet/lipgloss"
)

// --- Styles ---

type styles struct {
	subtle      lipgloss.Style
	title       lipgloss.Style
	info        lipgloss.Style
	err         lipgloss.Style
	box         lipgloss.Style
	tableHeader lipgloss.Style
	badge       lipgloss.Style
	activeTab   lipgloss.Style
	tab         lipgloss.Style
	positive    lipgloss.Style
	negative    lipgloss.Style
}

type palette struct {
	subtle, text, accent, info, err, border, badge string
}

var (
	darkPalette = palette{
		subtle: "241",
		text:   "#FAFAFA",
		accent: "#7D56F4",
		info:   "#04B575",
		err:    "#FF0000",
		border: "#874BFD",
		badge:  "#F7931A",
	}
	lightPalette = palette{
		subtle: "245",
		text:   "#1A1A1A",
		accent: "#B9A5FF",
		info:   "#007A4D",
		err:    "#C00000",
		border: "#5A3FC0",
		badge:  "#B35C00",
	}
)

func newStyles(theme string) styles {
	p := darkPalette
	if theme == prefs.ThemeLight {
		p = lightPalette
	}
	return styles{
		subtle: lipgloss.NewStyle().Foreground(lipgloss.Color(p.subtle)),
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.text)).
			Background(lipgloss.Color(p.accent)).
			Padding(0, 1).
			Bold(true),
		info: lipgloss.NewStyle().Foreground(lipgloss.Color(p.info)),
		err:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.err)),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),
		tableHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.text)).
			Bold(true).
			Padding(0, 1),
		badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.badge)).
			Bold(true),
		activeTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.text)).
			Background(lipgloss.Color(p.accent)).
			Padding(0, 1),
		tab:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.subtle)).Padding(0, 1),
		positive: lipgloss.NewStyle().Foreground(lipgloss.Color(p.info)),
		negative: lipgloss.NewStyle().Foreground(lipgloss.Color(p.err)),
	}
}
