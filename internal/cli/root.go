// Package cli wires the lazylist commands: the interactive list view,
// headless export, the HTTP server and column preference management.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/models"
)

// rootFlags are shared by every command
type rootFlags struct {
	configPath string
	source     string
	module     string
	search     string
	filters    []string
	logic      string
	quick      string
	saved      string
	sort       string
	debug      bool
}

// query converts the list flags into an engine query
func (f *rootFlags) query() (listview.Query, error) {
	filters, err := listview.ParseFilterArgs(f.filters)
	if err != nil {
		return listview.Query{}, err
	}
	q := listview.Query{
		Search:  f.search,
		Filters: filters,
		Quick:   f.quick,
		Saved:   f.saved,
		Sort:    f.sort,
	}
	if f.logic != "" {
		q.Logic = models.ParseFilterLogic(f.logic)
	}
	return q, nil
}

// NewRootCmd creates the root command. Without a subcommand it opens the
// interactive view.
func NewRootCmd(version string) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "lazylist",
		Short:         "Searchable, filterable list views over files and databases",
		Version:       version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default searches the user config dir, . and ./config)")
	pf.StringVar(&flags.source, "source", "", "data file, SQLite database or DSN that replaces the view's source")
	pf.StringVarP(&flags.module, "module", "m", "", "view to open (default from config)")
	pf.StringVarP(&flags.search, "search", "s", "", "initial search text")
	pf.StringArrayVarP(&flags.filters, "filter", "f", nil, "filter as key=value; repeatable")
	pf.StringVar(&flags.logic, "logic", "", "combine filters with AND or OR")
	pf.StringVarP(&flags.quick, "quick", "q", "", "quick filter label")
	pf.StringVar(&flags.saved, "saved", "", "saved filter id or name")
	pf.StringVar(&flags.sort, "sort", "", "sort column, optionally key:desc")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newViewCmd(flags),
		newExportCmd(flags),
		newServeCmd(flags),
		newColumnsCmd(flags),
	)
	return cmd
}

const rootCmdExample = `  # Browse the default view
  lazylist

  # Open the invoices view filtered to unpaid rows
  lazylist --module invoices --filter status=Due

  # Browse a CSV file without any configuration
  lazylist --source clients.csv

  # Export my open invoices to CSV on stdout
  lazylist export -m invoices --quick Mine --out -

  # Serve every configured view over HTTP
  lazylist serve --addr :8080

  # Hide a column and move another one first
  lazylist columns hide notes -m invoices
  lazylist columns move total number -m invoices`
