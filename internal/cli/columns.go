package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazylist/internal/listview"
)

func newColumnsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List or change a view's column preferences",
		Long: `Without a subcommand, lists every column of the view in display order
with its visibility and width. Changes are saved to the preference store and
apply to the interactive view, exports and the HTTP API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withColumns(cmd, flags, func(*listview.Engine) error { return nil })
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show KEY...",
			Short: "Make columns visible; without keys, show every column",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withColumns(cmd, flags, func(e *listview.Engine) error {
					if len(args) == 0 {
						return e.ShowAllColumns()
					}
					for _, key := range args {
						if err := e.SetColumnVisible(key, true); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "hide KEY...",
			Short: "Hide columns",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withColumns(cmd, flags, func(e *listview.Engine) error {
					for _, key := range args {
						if err := e.SetColumnVisible(key, false); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "move KEY TARGET",
			Short: "Move a column to the position of another",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withColumns(cmd, flags, func(e *listview.Engine) error {
					if err := e.BeginDrag(args[0]); err != nil {
						return err
					}
					return e.DropOn(args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "width KEY [WIDTH]",
			Short: "Set a column width hint such as 200px; without WIDTH, clear it",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				width := ""
				if len(args) == 2 {
					width = args[1]
				}
				return withColumns(cmd, flags, func(e *listview.Engine) error {
					return e.SetColumnWidth(args[0], width)
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default order with every column visible",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withColumns(cmd, flags, func(e *listview.Engine) error {
					return e.ResetColumns()
				})
			},
		},
	)
	return cmd
}

// withColumns loads the flagged view, applies change and prints the
// resulting columns
func withColumns(cmd *cobra.Command, flags *rootFlags, change func(*listview.Engine) error) error {
	s, err := openSession(cmd, flags, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	view, err := s.prepare(cmd.Context(), flags, false)
	if err != nil {
		return err
	}
	if err := change(view.Engine); err != nil {
		return err
	}
	return printColumns(cmd.OutOrStdout(), view.Engine.AllColumns())
}

func printColumns(w io.Writer, cols []listview.ColumnState) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tLABEL\tVISIBLE\tWIDTH")
	for _, c := range cols {
		visible := "yes"
		if !c.Visible {
			visible = "no"
		}
		width := c.Width
		if width == "" {
			width = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Key, c.Label, visible, width)
	}
	return tw.Flush()
}
