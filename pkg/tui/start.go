package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bpdash/pkg/config"
	"bpdash/pkg/prefs"
	"bpdash/pkg/provider"
	"bpdash/pkg/refresh"

	tea "github.com/charmbracelet/bubbletea"
)

// Options wires the dashboard to its collaborators.
type Options struct {
	Controller *refresh.Controller
	Source     provider.Source
	Config     config.Config
	Prefs      prefs.Store
	Logger     *slog.Logger
	Version    string
}

// Start runs the dashboard until the user quits. The controller's automatic
// refresh runs for the lifetime of the program and is stopped on return.
func Start(ctx context.Context, opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("tui: controller is required")
	}
	if opts.Version != "" {
		Version = opts.Version
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts.Controller.Start(ctx)
	defer opts.Controller.Stop()

	p := tea.NewProgram(
		initialModel(ctx, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		// cancelled from outside, e.g. SIGTERM
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
