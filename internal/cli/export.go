package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazylist/internal/export"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered rows of a view",
		Long: `Exports the rows left after search and filters, projected through the
visible columns in their saved order. Excel falls back to CSV; PDF is not
available yet.`,
		Example: `  # Unpaid invoices as CSV in the current directory
  lazylist export -m invoices --filter status=Due

  # JSON on stdout
  lazylist export -m clients --format json --out -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags, format, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv, json, yaml, excel or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory; - writes to stdout")
	return cmd
}

func runExport(cmd *cobra.Command, flags *rootFlags, formatName, out string) error {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	s, err := openSession(cmd, flags, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	view, err := s.prepare(cmd.Context(), flags, true)
	if err != nil {
		return err
	}

	if out == "-" {
		result, err := view.Engine.Export(cmd.OutOrStdout(), format)
		if result.Notice != "" {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), result.Notice)
		}
		return err
	}

	result, path, err := view.ExportFile(out, format)
	if err != nil {
		if errors.Is(err, export.ErrNotImplemented) && result.Notice != "" {
			return errors.New(result.Notice)
		}
		return err
	}
	if result.Notice != "" {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), result.Notice)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d rows to %s\n", result.Rows, path)
	return nil
}
