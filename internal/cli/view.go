package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazylist/internal/app"
	"github.com/rebeliceyang/lazylist/internal/export"
	"github.com/rebeliceyang/lazylist/internal/logging"
)

func newViewCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the interactive list view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, flags)
		},
	}
}

func runView(cmd *cobra.Command, flags *rootFlags) error {
	q, err := flags.query()
	if err != nil {
		return err
	}

	s, err := openSession(cmd, flags, false)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	m := app.New(app.Options{
		Config:       s.cfg,
		Views:        s.views,
		Module:       flags.module,
		Query:        q,
		ExportFormat: export.FormatCSV,
		Logger:       logging.Component(s.log.Logger, "app"),
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(cmd.Context())}
	if s.cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(m, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
