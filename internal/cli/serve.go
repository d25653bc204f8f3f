package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazylist/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve list views over HTTP",
		Long: `Serves every configured view under /api/views/{module}: paged rows,
exports, column preferences and saved filters. Query parameters mirror the
list flags (search, filter, logic, quick, saved, sort) plus page and size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Views:    s.views,
				Config:   s.cfg.Server,
				PageSize: s.cfg.General.PageSize,
				Logger:   s.log.Logger,
			})
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
