package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// FileSource reads CSV, JSON or YAML files. Every Load re-reads the file.
type FileSource struct {
	cfg models.SourceConfig
}

// NewFileSource creates a file source; cfg.Kind must be resolved
func NewFileSource(cfg models.SourceConfig) *FileSource {
	return &FileSource{cfg: cfg}
}

// Load reads the file and applies Limit/Offset
func (s *FileSource) Load(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	var columns []string
	var rows []models.Row
	switch s.cfg.Kind {
	case models.SourceCSV:
		columns, rows, err = ParseCSV(bytes.NewReader(data))
	case models.SourceJSON:
		columns, rows, err = ParseJSON(data)
	case models.SourceYAML:
		columns, rows, err = ParseYAML(data)
	default:
		err = fmt.Errorf("unsupported file kind: %s", s.cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	ensureIDs(rows, s.cfg.IDColumn, 0)

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	return &Result{
		Columns: withIDColumn(columns),
		Rows:    window(rows, limit, req.Offset),
		Total:   len(rows),
	}, nil
}

// Close is a no-op
func (s *FileSource) Close() error {
	return nil
}

// ParseCSV reads a header row followed by records. Values stay strings.
func ParseCSV(r io.Reader) ([]string, []models.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []models.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(models.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// ParseJSON reads an array of objects. Numbers are kept as json.Number.
func ParseJSON(data []byte) ([]string, []models.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON source: %w", err)
	}

	rows := make([]models.Row, len(records))
	for i, rec := range records {
		rows[i] = models.Row(rec)
	}
	return unionKeys(rows), rows, nil
}

// ParseYAML reads a sequence of mappings
func ParseYAML(data []byte) ([]string, []models.Row, error) {
	var records []map[string]interface{}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML source: %w", err)
	}

	rows := make([]models.Row, len(records))
	for i, rec := range records {
		rows[i] = models.Row(rec)
	}
	return unionKeys(rows), rows, nil
}

// unionKeys lists every field seen, id first and the rest sorted
func unionKeys(rows []models.Row) []string {
	seen := map[string]bool{}
	var keys []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	if seen[models.IDField] {
		out := []string{models.IDField}
		for _, k := range keys {
			if k != models.IDField {
				out = append(out, k)
			}
		}
		return out
	}
	return keys
}
