package source

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rebeliceyang/lazylist/internal/filter"
	"github.com/rebeliceyang/lazylist/internal/models"
)

// SQLSource loads rows from MySQL or SQLite through database/sql
type SQLSource struct {
	db      *sql.DB
	cfg     models.SourceConfig
	builder *filter.Builder
	logger  zerolog.Logger
}

// NewMySQLSource connects to a MySQL database
func NewMySQLSource(ctx context.Context, cfg models.SourceConfig, fields []models.FilterField, logger zerolog.Logger) (*SQLSource, error) {
	password, err := ResolvePassword(cfg.Connection)
	if err != nil {
		return nil, err
	}

	port := cfg.Connection.Port
	if port == 0 {
		port = 3306
	}

	mcfg := mysql.NewConfig()
	mcfg.User = cfg.Connection.User
	mcfg.Passwd = password
	mcfg.Net = "tcp"
	mcfg.Addr = net.JoinHostPort(cfg.Connection.Host, strconv.Itoa(port))
	mcfg.DBName = cfg.Connection.Database
	mcfg.ParseTime = true

	db, err := sql.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	return newSQLSource(ctx, db, cfg, filter.MySQL, fields, logger)
}

// NewSQLiteSource opens a SQLite database file
func NewSQLiteSource(ctx context.Context, cfg models.SourceConfig, fields []models.FilterField, logger zerolog.Logger) (*SQLSource, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite source needs a path")
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Clean(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return newSQLSource(ctx, db, cfg, filter.SQLite, fields, logger)
}

func newSQLSource(ctx context.Context, db *sql.DB, cfg models.SourceConfig, dialect filter.Dialect, fields []models.FilterField, logger zerolog.Logger) (*SQLSource, error) {
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("source", cfg.String()).Msg("connected")

	return &SQLSource{
		db:      db,
		cfg:     cfg,
		builder: filter.NewBuilder(dialect, fields),
		logger:  logger,
	}, nil
}

// Load runs the count and page queries concurrently
func (s *SQLSource) Load(ctx context.Context, req Request) (*Result, error) {
	pageSQL, countSQL, args, err := selectFor(s.builder, s.cfg, req)
	if err != nil {
		return nil, err
	}

	var result Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var total int64
		if err := s.db.QueryRowContext(gctx, countSQL, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		result.Total = int(total)
		return nil
	})

	g.Go(func() error {
		columns, types, rows, err := queryRows(gctx, s.db, pageSQL, args...)
		if err != nil {
			return err
		}
		result.Columns = columns
		result.Types = types
		result.Rows = rows
		return nil
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

// Close closes the database handle
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// queryRows scans every row into a map, turning driver byte slices into
// strings, and reports each column's database type
func queryRows(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]string, map[string]string, []models.Row, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}
	columns := make([]string, len(columnTypes))
	types := make(map[string]string, len(columnTypes))
	for i, ct := range columnTypes {
		columns[i] = ct.Name()
		if name := ct.DatabaseTypeName(); name != "" {
			types[ct.Name()] = name
		}
	}

	var out []models.Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to read row: %w", err)
		}

		row := make(models.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}

	return columns, types, out, rows.Err()
}
