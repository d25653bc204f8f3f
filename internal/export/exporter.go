package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"
)

// ErrNotImplemented is returned for formats without a serializer
var ErrNotImplemented = errors.New("export format not implemented")

// Format is an export file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// ParseFormat accepts format names and common extensions
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "excel", "xlsx", "xls":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	default:
		return string(f)
	}
}

// ContentType returns the HTTP media type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName returns "<module>_export.<ext>"
func FileName(module string, f Format) string {
	return fmt.Sprintf("%s_export.%s", module, f.Extension())
}

// Table is a projected export: header labels and stringified cells
type Table struct {
	Headers []string
	Rows    [][]string
}

// Write serializes t in the given format
func Write(w io.Writer, f Format, t Table) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatYAML:
		return WriteYAML(w, t)
	case FormatExcel, FormatPDF:
		return fmt.Errorf("%s: %w", f, ErrNotImplemented)
	default:
		return fmt.Errorf("unknown export format: %s", f)
	}
}

// WriteCSV writes a header row and one record per row with RFC 4180 quoting
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// orderedRow marshals as a JSON object keeping header order
type orderedRow struct {
	keys   []string
	values []string
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t Table) ordered() []orderedRow {
	rows := make([]orderedRow, len(t.Rows))
	for i, row := range t.Rows {
		values := make([]string, len(t.Headers))
		copy(values, row)
		rows[i] = orderedRow{keys: t.Headers, values: values}
	}
	return rows
}

// WriteJSON writes an array of objects keyed by header label
func WriteJSON(w io.Writer, t Table) error {
	// Marshal to JSON with pretty printing
	data, err := json.MarshalIndent(t.ordered(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteYAML writes a sequence of mappings keyed by header label
func WriteYAML(w io.Writer, t Table) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.ordered() {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, k := range row.keys {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row.values[i]},
			)
		}
		doc.Content = append(doc.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

// ToFile writes t to path in the given format
func ToFile(path string, f Format, t Table) error {
	var buf bytes.Buffer
	if err := Write(&buf, f, t); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// TSV renders t as tab separated lines for pasting into spreadsheets
func TSV(t Table) string {
	var b strings.Builder
	clean := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(clean.Replace(c))
		}
		b.WriteByte('\n')
	}

	writeLine(t.Headers)
	for _, row := range t.Rows {
		writeLine(row)
	}
	return b.String()
}

// CopyToClipboard places t on the system clipboard as TSV
func CopyToClipboard(t Table) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: %w", ErrNotImplemented)
	}
	if err := clipboard.WriteAll(TSV(t)); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
