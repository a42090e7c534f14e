// Package tui provides the terminal user interface.
package tui

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/AntoineGS/ticklist/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Options controls how Run starts the TUI.
type Options struct {
	Logger *slog.Logger
	// Watch reloads the item source when it changes on disk
	Watch bool
}

// Run starts the interactive TUI over s and blocks until the user quits.
func Run(s *session.Session, opts Options) error {
	modelOpts := []ModelOption{}
	if opts.Logger != nil {
		modelOpts = append(modelOpts, WithModelLogger(opts.Logger))
	}

	if opts.Watch && s.Loaded() {
		w, err := NewWatcher(s.Origin())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not watch %s: %v\n", s.Origin(), err)
		} else {
			defer func() { _ = w.Close() }() //nolint:errcheck // shutdown
			modelOpts = append(modelOpts, WithWatcher(w))
		}
	}

	model := NewModel(s, modelOpts...)

	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	m, ok := finalModel.(Model)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}

	printFinalSummary(m)

	return nil
}

func printFinalSummary(m Model) {
	v := m.session.View()
	if !v.Loaded {
		return
	}

	if v.Complete {
		fmt.Printf("All %d items checked\n", v.Total)
		return
	}

	fmt.Printf("%d of %d items remaining\n", v.Remaining, v.Total)
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
