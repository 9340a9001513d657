package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/favs/internal/tui"
)

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	e, err := opts.open(true)
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.NewApp(tui.AppParams{
		Controller: e.ctl,
		Context:    cmd.Context(),
		PageSize:   e.cfg.PageSize,
	})
	e.log.Info().Msg("starting tui")
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
