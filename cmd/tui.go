package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/desertthunder/lyra/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing lists and running extractions.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	s, err := r.loadSession()
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: run 'lyra auth login' first", shared.ErrNotAuthenticated)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join(os.TempDir(), "lyra-tui.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	r.logger = shared.NewLogger(logFile)

	lists := repositories.NewListRepository(db)
	engine := r.buildEngine(db)

	model := ui.NewModel(ctx, s.UserID, lists, engine)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
