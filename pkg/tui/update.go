package tui

import (
	"fmt"
	"time"

	"bpdash/pkg/chart"
	"bpdash/pkg/prefs"
	"bpdash/pkg/refresh"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-16, 3)
		m.updateViewport()

	case refresh.Event:
		cmds = append(cmds, listenForController(m.sub))
		m.state = msg.State
		if msg.Type == refresh.EventUpdated {
			m.recordHistory()
		}
		m.updateViewport()

	case manualRefreshDoneMsg:
		// events may have been dropped on a full channel; the controller is authoritative
		m.state = m.ctrl.State()
		if msg.err != nil {
			m.logger.Debug("manual refresh finished with error", "error", msg.err)
		}
		m.updateViewport()

	case userInfoMsg:
		if msg.err != nil {
			m.logger.Warn("fetching user info failed", "error", msg.err)
			break
		}
		m.userInfo = msg.info

	case logoutDoneMsg:
		if msg.err != nil {
			m.logger.Warn("logout failed", "error", msg.err)
		}
		m.ctrl.Stop()
		return m, tea.Quit

	case privacyTimeoutMsg:
		if m.config.PrivacyTimeoutSeconds <= 0 {
			break
		}
		timeoutDuration := time.Duration(m.config.PrivacyTimeoutSeconds) * time.Second
		if !m.privacyMode {
			if time.Since(m.lastInteraction) >= timeoutDuration {
				m.privacyMode = true
				m.statusMessage = "Privacy Mode enabled due to inactivity"
				m.updateViewport()
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			} else {
				remaining := timeoutDuration - time.Since(m.lastInteraction)
				cmds = append(cmds, tea.Tick(remaining, func(t time.Time) tea.Msg {
					return privacyTimeoutMsg{}
				}))
			}
		}

	case tea.KeyMsg:
		m.lastInteraction = time.Now()
		if msg.String() == "?" {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.showHelp {
			if msg.String() == "q" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.showGraph {
			switch msg.String() {
			case "g", "q", "esc":
				m.showGraph = false
				return m, nil
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.ctrl.Stop()
			return m, tea.Quit

		case "r":
			// mirror the controller's synchronous transition so the indicator shows at once
			m.state.Phase = refresh.PhaseLoading
			m.state.Message = ""
			cmds = append(cmds, refreshManual(m.ctx, m.ctrl))

		case "m":
			mode := m.selector.CycleMode()
			m.statusMessage = fmt.Sprintf("View: %s", mode)
			m.updateViewport()
			cmds = append(cmds, clearStatusAfter(2*time.Second))

		case "1", "2", "3":
			mode := chart.ViewMode(msg.String()[0] - '1')
			if err := m.selector.SetMode(mode); err == nil {
				m.statusMessage = fmt.Sprintf("View: %s", mode)
				m.updateViewport()
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}

		case "g":
			m.showGraph = true
			return m, nil

		case "P":
			m.privacyMode = !m.privacyMode
			m.updateViewport()
			if !m.privacyMode && m.config.PrivacyTimeoutSeconds > 0 {
				cmds = append(cmds, tea.Tick(time.Duration(m.config.PrivacyTimeoutSeconds)*time.Second, func(t time.Time) tea.Msg {
					return privacyTimeoutMsg{}
				}))
			}

		case "T":
			theme, err := prefs.ToggleTheme(m.prefs)
			m.theme = theme
			m.styles = newStyles(theme)
			if err != nil {
				m.logger.Warn("saving theme preference failed", "error", err)
				m.statusMessage = "Theme changed but could not be saved"
			} else {
				m.statusMessage = fmt.Sprintf("Theme: %s", theme)
			}
			m.updateViewport()
			cmds = append(cmds, clearStatusAfter(2*time.Second))

		case "c":
			if m.state.Phase != refresh.PhaseReady {
				break
			}
			text := summaryText(m.series(), m.referenceCurrency(), m.privacyMode)
			if err := clipboard.WriteAll(text); err != nil {
				m.statusMessage = "Failed to copy to clipboard"
			} else if m.privacyMode {
				m.statusMessage = "Masked summary copied (Privacy Mode active)!"
			} else {
				m.statusMessage = "Summary copied to clipboard!"
			}
			cmds = append(cmds, clearStatusAfter(2*time.Second))

		case "L":
			m.statusMessage = "Logging out..."
			return m, logout(m.source)

		case "up", "k", "down", "j", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case uiTickMsg:
		m.now = time.Time(msg)
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))

	case clearStatusMsg:
		m.statusMessage = ""
	}

	return m, tea.Batch(cmds...)
}
