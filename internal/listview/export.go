package listview

import (
	"errors"
	"fmt"
	"io"

	"github.com/rebeliceyang/lazylist/internal/export"
	"github.com/rebeliceyang/lazylist/internal/models"
)

// ExportResult describes what was actually written
type ExportResult struct {
	Format   export.Format
	FileName string
	Rows     int
	Notice   string
}

// Project renders rows through the visible columns in display order
func (e *Engine) Project(rows []models.Row) export.Table {
	cols := e.OrderedColumns()

	table := export.Table{
		Headers: make([]string, len(cols)),
		Rows:    make([][]string, len(rows)),
	}
	for i, col := range cols {
		table.Headers[i] = col.Label
	}
	for i, row := range rows {
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = col.Cell(row)
		}
		table.Rows[i] = cells
	}
	return table
}

// ExportTable projects the filtered, sorted rows
func (e *Engine) ExportTable() export.Table {
	return e.Project(e.Rows())
}

// SelectionTable projects the selected rows
func (e *Engine) SelectionTable() export.Table {
	return e.Project(e.SelectedRows())
}

// Export writes the filtered rows in the requested format. Excel falls back
// to CSV with a notice; PDF writes nothing and returns export.ErrNotImplemented.
func (e *Engine) Export(w io.Writer, format export.Format) (ExportResult, error) {
	if !e.features.Export {
		return ExportResult{}, ErrFeatureDisabled
	}

	table := e.ExportTable()
	result := ExportResult{
		Format:   format,
		FileName: export.FileName(e.module, format),
		Rows:     len(table.Rows),
	}

	if format == export.FormatExcel {
		result.Format = export.FormatCSV
		result.FileName = export.FileName(e.module, export.FormatCSV)
		result.Notice = "Excel export is not available yet, exported CSV instead"
	}

	if err := export.Write(w, result.Format, table); err != nil {
		if errors.Is(err, export.ErrNotImplemented) {
			result.Notice = fmt.Sprintf("%s export is not available yet", format)
		}
		e.logger.Warn().Err(err).Str("format", string(format)).Msg("export failed")
		return result, err
	}

	e.logger.Info().
		Str("format", string(result.Format)).
		Int("rows", result.Rows).
		Msg("exported rows")
	return result, nil
}
