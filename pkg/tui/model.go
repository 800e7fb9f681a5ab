package tui

import (
	"context"
	"log/slog"
	"time"

	"bpdash/pkg/chart"
	"bpdash/pkg/config"
	"bpdash/pkg/models"
	"bpdash/pkg/prefs"
	"bpdash/pkg/provider"
	"bpdash/pkg/refresh"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// maxHistory caps the number of total-value points kept for the graph.
const maxHistory = 720

// --- Messages ---

type clearStatusMsg struct{}
type uiTickMsg time.Time
type privacyTimeoutMsg struct{}

// manualRefreshDoneMsg arrives when a user-triggered refresh has settled.
type manualRefreshDoneMsg struct{ err error }

type userInfoMsg struct {
	info models.UserInfo
	err  error
}

type logoutDoneMsg struct{ err error }

// --- Model ---

type model struct {
	ctx       context.Context
	ctrl      *refresh.Controller
	source    provider.Source
	sub       refresh.Subscriber
	projector *chart.Projector
	selector  chart.Selector
	prefs     prefs.Store
	logger    *slog.Logger
	config    config.Config

	state    refresh.State
	userInfo models.UserInfo
	history  []float64

	theme  string
	styles styles

	spinner         spinner.Model
	viewport        viewport.Model
	width           int
	height          int
	showHelp        bool
	showGraph       bool
	privacyMode     bool
	statusMessage   string
	lastInteraction time.Time
	now             time.Time
}

func initialModel(ctx context.Context, opts Options) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	store := opts.Prefs
	if store == nil {
		store = prefs.NewMemoryStore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := prefs.Theme(store)

	projector := chart.NewProjector(opts.Config.ReferenceCurrency)
	projector.Logger = logger

	return model{
		ctx:             ctx,
		ctrl:            opts.Controller,
		source:          opts.Source,
		sub:             opts.Controller.Subscribe(),
		projector:       projector,
		selector:        chart.NewSelector(opts.Config.ViewMode()),
		prefs:           store,
		logger:          logger,
		config:          opts.Config,
		state:           opts.Controller.State(),
		theme:           theme,
		styles:          newStyles(theme),
		spinner:         s,
		viewport:        viewport.New(80, 10),
		lastInteraction: time.Now(),
		now:             time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd

	cmds = append(cmds, listenForController(m.sub))
	cmds = append(cmds, refreshManual(m.ctx, m.ctrl))
	if m.source != nil {
		cmds = append(cmds, fetchUserInfo(m.ctx, m.source))
	}
	cmds = append(cmds, m.spinner.Tick)

	if !m.privacyMode && m.config.PrivacyTimeoutSeconds > 0 {
		cmds = append(cmds, tea.Tick(time.Duration(m.config.PrivacyTimeoutSeconds)*time.Second, func(t time.Time) tea.Msg {
			return privacyTimeoutMsg{}
		}))
	}
	cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))
	return tea.Batch(cmds...)
}
