package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazylist/internal/config"
	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/logging"
	"github.com/rebeliceyang/lazylist/internal/views"
)

// session is the configuration, logger and views manager behind a command
type session struct {
	cfg   *config.Config
	log   *logging.Logger
	views *views.Manager
}

// openSession loads configuration and opens storage. Headless commands log
// to stderr; the TUI logs to the configured file.
func openSession(cmd *cobra.Command, flags *rootFlags, console bool) (*session, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	opts := logging.FromConfig(cfg.Log, console, flags.debug)
	opts.Out = cmd.ErrOrStderr()
	logger, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	manager, err := views.NewManager(views.Options{
		Config:         cfg,
		SourceOverride: flags.source,
		Logger:         logger.Logger,
	})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	log := logging.Component(logger.Logger, "cli")
	log.Debug().
		Str("module", flags.module).
		Str("source", flags.source).
		Msg("session opened")

	return &session{cfg: cfg, log: logger, views: manager}, nil
}

// Close releases storage and the log file
func (s *session) Close() error {
	return errors.Join(s.views.Close(), s.log.Close())
}

// prepare opens the flagged module with its rows loaded and the list flags
// applied
func (s *session) prepare(ctx context.Context, flags *rootFlags, withQuery bool) (*views.View, error) {
	q := listview.Query{}
	if withQuery {
		var err error
		if q, err = flags.query(); err != nil {
			return nil, err
		}
	}

	view, err := s.views.Open(ctx, flags.module)
	if err != nil {
		return nil, err
	}
	if err := view.Prepare(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", view.Module, err)
	}
	return view, nil
}
