// Package source loads rows for a list view from files or SQL databases.
package source

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/filter"
	"github.com/rebeliceyang/lazylist/internal/models"
)

// Request narrows what a source returns. File sources ignore Query.
type Request struct {
	Query  filter.Query
	Limit  int
	Offset int
}

// Result is one load of rows
type Result struct {
	Columns []string
	Rows    []models.Row
	// Total is the number of matching rows before Limit/Offset
	Total int
	// Types maps column names to database type names; file sources leave it nil
	Types map[string]string
}

// Source is a row provider
type Source interface {
	Load(ctx context.Context, req Request) (*Result, error)
	Close() error
}

// Open creates the source described by cfg. SQL sources connect immediately.
func Open(ctx context.Context, cfg models.SourceConfig, fields []models.FilterField, logger zerolog.Logger) (Source, error) {
	kind, err := cfg.ResolveKind()
	if err != nil {
		return nil, err
	}
	cfg.Kind = kind
	logger = logger.With().Str("component", "source").Str("kind", string(kind)).Logger()

	switch kind {
	case models.SourceCSV, models.SourceJSON, models.SourceYAML:
		return NewFileSource(cfg), nil
	case models.SourcePostgres:
		return NewPostgresSource(ctx, cfg, fields, logger)
	case models.SourceMySQL:
		return NewMySQLSource(ctx, cfg, fields, logger)
	case models.SourceSQLite:
		return NewSQLiteSource(ctx, cfg, fields, logger)
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", kind)
	}
}

// ensureIDs gives every row an id: IDColumn when configured, otherwise its
// 1-based position in the full result
func ensureIDs(rows []models.Row, idColumn string, offset int) {
	for i, row := range rows {
		if _, ok := row[models.IDField]; ok {
			continue
		}
		if idColumn != "" {
			if v, ok := row[idColumn]; ok {
				row[models.IDField] = v
				continue
			}
		}
		row[models.IDField] = strconv.Itoa(offset + i + 1)
	}
}

// withIDColumn makes sure "id" is listed among the columns
func withIDColumn(columns []string) []string {
	for _, c := range columns {
		if c == models.IDField {
			return columns
		}
	}
	return append([]string{models.IDField}, columns...)
}

// window applies Limit/Offset to rows already in memory
func window(rows []models.Row, limit, offset int) []models.Row {
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
