package views

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/config"
	"github.com/rebeliceyang/lazylist/internal/export"
	"github.com/rebeliceyang/lazylist/internal/filter"
	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/source"
)

// View is one module's engine over its source
type View struct {
	Module string
	Title  string
	Config config.ViewConfig
	Engine *listview.Engine

	src    source.Source
	fields []string
	logger zerolog.Logger
}

// Request is the source request for the engine's current state. With
// pushdown enabled the filters narrow the SQL query. The search joins them
// only once the search columns cover every loaded column, since the engine
// searches every field.
func (v *View) Request() source.Request {
	var req source.Request
	if v.Config.Pushdown {
		req.Query = v.Engine.PushdownQuery(v.searchColumns())
	}
	return req
}

// searchColumns returns the configured search columns when they include
// every column of the last load, nil otherwise
func (v *View) searchColumns() []string {
	if len(v.Config.SearchColumns) == 0 || len(v.fields) == 0 {
		return nil
	}
	configured := make(map[string]bool, len(v.Config.SearchColumns))
	for _, key := range v.Config.SearchColumns {
		configured[key] = true
	}
	for _, key := range v.fields {
		if !configured[key] {
			return nil
		}
	}
	return v.Config.SearchColumns
}

// Fetch loads rows without touching the engine, so it can run off the UI loop
func (v *View) Fetch(ctx context.Context, req source.Request) (*source.Result, error) {
	return v.src.Load(ctx, req)
}

// SetResult hands fetched rows to the engine, inferring columns when the
// view lists none and filter types the view leaves blank
func (v *View) SetResult(result *source.Result) {
	if len(result.Columns) > 0 {
		v.fields = result.Columns
	}
	if len(v.Config.Columns) == 0 {
		v.Engine.SetColumns(v.Config.ColumnsFor(result.Columns))
	}
	if fields, changed := filter.InferFieldTypes(v.Engine.FilterFields(), result.Types); changed {
		v.Engine.SetFilterFields(fields)
	}
	v.Engine.SetData(result.Rows)

	v.logger.Debug().
		Int("rows", len(result.Rows)).
		Int("total", result.Total).
		Bool("pushdown", v.Config.Pushdown).
		Msg("view loaded")
}

// Load fetches rows for the current state and hands them to the engine
func (v *View) Load(ctx context.Context) (int, error) {
	result, err := v.Fetch(ctx, v.Request())
	if err != nil {
		return 0, err
	}
	v.SetResult(result)
	return result.Total, nil
}

// Prepare loads rows and applies q. A pushdown view is loaded again when q
// narrowed it, so the SQL query reflects the applied filters.
func (v *View) Prepare(ctx context.Context, q listview.Query) error {
	if _, err := v.Load(ctx); err != nil {
		return err
	}
	if q.IsZero() {
		return nil
	}
	if err := v.Engine.Apply(q); err != nil {
		return err
	}
	if v.Config.Pushdown {
		_, err := v.Load(ctx)
		return err
	}
	return nil
}

// ExportFile writes the filtered rows to path. An empty path uses the
// export file name in the working directory; a directory gets that name
// inside it. PDF writes no file.
func (v *View) ExportFile(path string, format export.Format) (listview.ExportResult, string, error) {
	var buf bytes.Buffer
	result, err := v.Engine.Export(&buf, format)
	if err != nil {
		return result, "", err
	}

	if path == "" {
		path = result.FileName
	} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, result.FileName)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return result, "", fmt.Errorf("failed to write export file: %w", err)
	}
	return result, path, nil
}
