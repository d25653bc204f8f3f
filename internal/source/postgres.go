package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rebeliceyang/lazylist/internal/filter"
	"github.com/rebeliceyang/lazylist/internal/models"
)

// PostgresSource loads rows through a pgx connection pool
type PostgresSource struct {
	pool    *pgxpool.Pool
	cfg     models.SourceConfig
	builder *filter.Builder
	logger  zerolog.Logger
}

// NewPostgresSource connects and pings the database
func NewPostgresSource(ctx context.Context, cfg models.SourceConfig, fields []models.FilterField, logger zerolog.Logger) (*PostgresSource, error) {
	cfg.Connection = withPostgresEnv(cfg.Connection)
	password, err := ResolvePassword(cfg.Connection)
	if err != nil {
		return nil, err
	}
	if password == "" {
		if path, err := pgPassPath(); err == nil {
			password = lookupPgPass(path, cfg.Connection)
		}
	}
	cfg.Connection.Password = password

	poolConfig, err := pgxpool.ParseConfig(buildConnectionString(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("source", cfg.String()).Msg("connected")

	return &PostgresSource{
		pool:    pool,
		cfg:     cfg,
		builder: filter.NewBuilder(filter.Postgres, fields),
		logger:  logger,
	}, nil
}

// Load runs the count and page queries concurrently
func (s *PostgresSource) Load(ctx context.Context, req Request) (*Result, error) {
	pageSQL, countSQL, args, err := selectFor(s.builder, s.cfg, req)
	if err != nil {
		return nil, err
	}

	var result Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var total int64
		if err := s.pool.QueryRow(gctx, countSQL, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		result.Total = int(total)
		return nil
	})

	g.Go(func() error {
		rows, err := s.pool.Query(gctx, pageSQL, args...)
		if err != nil {
			return fmt.Errorf("failed to query rows: %w", err)
		}
		defer rows.Close()

		fieldDescriptions := rows.FieldDescriptions()
		typeMap := rows.Conn().TypeMap()
		columns := make([]string, len(fieldDescriptions))
		types := make(map[string]string, len(fieldDescriptions))
		for i, fd := range fieldDescriptions {
			columns[i] = fd.Name
			if t, ok := typeMap.TypeForOID(fd.DataTypeOID); ok {
				types[fd.Name] = t.Name
			}
		}

		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return fmt.Errorf("failed to read row: %w", err)
			}
			row := make(models.Row, len(columns))
			for i, col := range columns {
				row[col] = values[i]
			}
			result.Rows = append(result.Rows, row)
		}
		result.Columns = columns
		result.Types = types
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ensureIDs(result.Rows, s.cfg.IDColumn, req.Offset)
	result.Columns = withIDColumn(result.Columns)

	s.logger.Debug().
		Int("rows", len(result.Rows)).
		Int("total", result.Total).
		Msg("loaded rows")
	return &result, nil
}

// Close closes the connection pool
func (s *PostgresSource) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// buildConnectionString creates a PostgreSQL connection string
func buildConnectionString(config models.ConnectionConfig) string {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	port := config.Port
	if port == 0 {
		port = 5432
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s database=%s sslmode=%s",
		config.Host,
		port,
		config.User,
		config.Database,
		sslMode,
	)

	if config.Password != "" {
		connStr += fmt.Sprintf(" password=%s", config.Password)
	}

	return connStr
}

// selectFor builds the page and count statements for a SQL source
func selectFor(b *filter.Builder, cfg models.SourceConfig, req Request) (string, string, []interface{}, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = cfg.Limit
	}

	switch {
	case cfg.Query != "":
		return b.BuildSelectSubquery(cfg.Query, req.Query, limit, req.Offset)
	case cfg.Table != "":
		return b.BuildSelect(cfg.Table, req.Query, limit, req.Offset)
	default:
		return "", "", nil, fmt.Errorf("%s source needs a table or a query", cfg.Kind)
	}
}
