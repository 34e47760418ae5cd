package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ganot/laptrack/internal/domain/stopwatch"
	"github.com/ganot/laptrack/internal/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive stopwatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns stdout, so logs must not go there.
			app, err := newApp(true)
			if err != nil {
				return err
			}
			defer app.Close()

			model := tui.New(app.engine, app.history, app.identity)
			prog := tea.NewProgram(model, tea.WithAltScreen())

			// Redraw the clock while the timer runs.
			app.engine.SetRefresh(stopwatch.DefaultRefreshPeriod, func(stopwatch.Millis) {
				prog.Send(tui.TickMsg{})
			})

			if _, err := prog.Run(); err != nil {
				return fmt.Errorf("tui error: %w", err)
			}
			return nil
		},
	}
}
