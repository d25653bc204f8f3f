package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// ErrInvalidIdentifier is returned for column or table names that cannot be quoted safely
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect selects placeholder style, quoting and date functions
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// Query is the part of the list view state that can be pushed to SQL
type Query struct {
	Search        string
	SearchColumns []string
	Filters       models.FilterSet
	Logic         models.FilterLogic
	SortKey       string
	SortDir       models.SortDirection
}

// Builder generates WHERE clauses from a filter set
type Builder struct {
	dialect Dialect
	fields  map[string]models.FilterField
}

// NewBuilder creates a builder; fields decide how each filter key is compared
func NewBuilder(dialect Dialect, fields []models.FilterField) *Builder {
	b := &Builder{dialect: dialect, fields: make(map[string]models.FilterField, len(fields))}
	for _, f := range fields {
		b.fields[f.Key] = f
	}
	return b
}

// Dialect returns the builder's SQL dialect
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

// params numbers placeholders across the whole statement
type params struct {
	dialect Dialect
	args    []interface{}
}

func (p *params) add(v interface{}) string {
	p.args = append(p.args, v)
	if p.dialect == Postgres {
		return fmt.Sprintf("$%d", len(p.args))
	}
	return "?"
}

// BuildWhere generates a WHERE clause for search and filters.
// It returns an empty string when nothing constrains the rows.
func (b *Builder) BuildWhere(q Query) (string, []interface{}, error) {
	p := &params{dialect: b.dialect}
	clause, err := b.where(q, p)
	if err != nil || clause == "" {
		return "", nil, err
	}
	return "WHERE " + clause, p.args, nil
}

func (b *Builder) where(q Query, p *params) (string, error) {
	var parts []string

	if term := q.Search; term != "" && len(q.SearchColumns) > 0 {
		var ors []string
		for _, col := range q.SearchColumns {
			clause, err := b.contains(col, term, p)
			if err != nil {
				return "", err
			}
			ors = append(ors, clause)
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}

	filters, err := b.buildFilters(q.Filters, q.Logic, p)
	if err != nil {
		return "", err
	}
	if filters != "" {
		parts = append(parts, "("+filters+")")
	}

	return strings.Join(parts, " AND "), nil
}

// buildFilters combines the active filters with logic. A criterion that
// cannot be evaluated is absent: skipped under AND, always true under OR.
func (b *Builder) buildFilters(set models.FilterSet, logic models.FilterLogic, p *params) (string, error) {
	keys := set.Active()
	if len(keys) == 0 {
		return "", nil
	}

	var clauses []string
	for _, key := range keys {
		clause, err := b.buildCondition(key, set[key], p)
		if err != nil {
			return "", err
		}
		if clause == "" {
			if logic == models.LogicOr {
				return "", nil
			}
			continue
		}
		clauses = append(clauses, clause)
	}

	op := " AND "
	if logic == models.LogicOr {
		op = " OR "
	}
	return strings.Join(clauses, op), nil
}

func (b *Builder) filterType(key string, v models.FilterValue) models.FilterType {
	if f, ok := b.fields[key]; ok && f.Type != "" {
		return f.Type
	}
	switch v.Kind {
	case models.KindText:
		return models.FilterText
	case models.KindDate:
		return models.FilterDate
	case models.KindDateRange:
		return models.FilterDateRange
	default:
		return models.FilterSelect
	}
}

// buildCondition builds a single filter condition
func (b *Builder) buildCondition(key string, v models.FilterValue, p *params) (string, error) {
	column, err := b.QuoteIdent(key)
	if err != nil {
		return "", err
	}

	switch b.filterType(key, v) {
	case models.FilterText:
		if v.Text == "" {
			return "", nil
		}
		return b.contains(key, v.Text, p)

	case models.FilterDate:
		day, _, ok := models.ParseDate(v.Text)
		if !ok {
			return "", nil
		}
		return fmt.Sprintf("%s = %s", b.dateExpr(column), p.add(b.dateArg(day))), nil

	case models.FilterDateRange:
		if v.Kind != models.KindDateRange {
			return "", nil
		}
		return b.rangeCondition(column, v, p), nil

	default:
		text := b.textExpr(column)
		if v.IsList() {
			placeholders := make([]string, len(v.Values))
			for i, val := range v.Values {
				placeholders[i] = p.add(val)
			}
			return fmt.Sprintf("%s IN (%s)", text, strings.Join(placeholders, ", ")), nil
		}
		return fmt.Sprintf("%s = %s", text, p.add(v.Text)), nil
	}
}

func (b *Builder) rangeCondition(column string, v models.FilterValue, p *params) string {
	var bounds []string

	if from, dateOnly, ok := models.ParseDate(v.Start); ok {
		if dateOnly {
			bounds = append(bounds, fmt.Sprintf("%s >= %s", b.dateExpr(column), p.add(b.dateArg(from))))
		} else {
			bounds = append(bounds, fmt.Sprintf("%s >= %s", column, p.add(from)))
		}
	}
	if to, dateOnly, ok := models.ParseDate(v.End); ok {
		if dateOnly {
			bounds = append(bounds, fmt.Sprintf("%s <= %s", b.dateExpr(column), p.add(b.dateArg(to))))
		} else {
			bounds = append(bounds, fmt.Sprintf("%s <= %s", column, p.add(to)))
		}
	}

	return strings.Join(bounds, " AND ")
}

// contains is a case-insensitive substring match on a column
func (b *Builder) contains(key, term string, p *params) (string, error) {
	column, err := b.QuoteIdent(key)
	if err != nil {
		return "", err
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	switch b.dialect {
	case Postgres:
		return fmt.Sprintf("%s ILIKE %s", b.textExpr(column), p.add(pattern)), nil
	case SQLite:
		return fmt.Sprintf("LOWER(%s) LIKE %s ESCAPE '\\'", b.textExpr(column), p.add(pattern)), nil
	default:
		return fmt.Sprintf("LOWER(%s) LIKE %s", b.textExpr(column), p.add(pattern)), nil
	}
}

func (b *Builder) textExpr(column string) string {
	switch b.dialect {
	case Postgres:
		return column + "::text"
	case MySQL:
		return fmt.Sprintf("CAST(%s AS CHAR)", column)
	default:
		return fmt.Sprintf("CAST(%s AS TEXT)", column)
	}
}

func (b *Builder) dateExpr(column string) string {
	switch b.dialect {
	case Postgres:
		return fmt.Sprintf("CAST(%s AS date)", column)
	case MySQL:
		return fmt.Sprintf("DATE(%s)", column)
	default:
		return fmt.Sprintf("date(%s)", column)
	}
}

// dateArg binds a calendar date; pgx encodes time.Time into date,
// the database/sql drivers compare against the ISO string
func (b *Builder) dateArg(t time.Time) interface{} {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if b.dialect == Postgres {
		return day
	}
	return day.Format(models.DateLayout)
}

// BuildOrderBy returns an ORDER BY clause, or "" without a sort key
func (b *Builder) BuildOrderBy(key string, dir models.SortDirection) (string, error) {
	if key == "" {
		return "", nil
	}
	column, err := b.QuoteIdent(key)
	if err != nil {
		return "", err
	}
	if dir == models.SortDesc {
		return "ORDER BY " + column + " DESC", nil
	}
	return "ORDER BY " + column + " ASC", nil
}

// BuildSelect returns the page query and the matching count query over table
func (b *Builder) BuildSelect(table string, q Query, limit, offset int) (string, string, []interface{}, error) {
	from, err := b.QuoteTable(table)
	if err != nil {
		return "", "", nil, err
	}
	return b.buildSelect(from, q, limit, offset)
}

// BuildSelectSubquery wraps a caller-supplied SELECT so filters apply to its result
func (b *Builder) BuildSelectSubquery(query string, q Query, limit, offset int) (string, string, []interface{}, error) {
	query = strings.TrimRight(strings.TrimSpace(query), ";")
	if query == "" {
		return "", "", nil, fmt.Errorf("empty source query")
	}
	return b.buildSelect("("+query+") AS src", q, limit, offset)
}

func (b *Builder) buildSelect(from string, q Query, limit, offset int) (string, string, []interface{}, error) {
	where, args, err := b.BuildWhere(q)
	if err != nil {
		return "", "", nil, err
	}
	order, err := b.BuildOrderBy(q.SortKey, q.SortDir)
	if err != nil {
		return "", "", nil, err
	}

	countSQL := strings.TrimSpace(fmt.Sprintf("SELECT COUNT(*) FROM %s %s", from, where))

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT * FROM %s", from)
	for _, part := range []string{where, order} {
		if part != "" {
			sb.WriteString(" " + part)
		}
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", limit, offset)
	}

	return sb.String(), countSQL, args, nil
}

// QuoteIdent validates and quotes a column name
func (b *Builder) QuoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	if b.dialect == MySQL {
		return "`" + name + "`", nil
	}
	return `"` + name + `"`, nil
}

// QuoteTable quotes a table name, optionally schema-qualified
func (b *Builder) QuoteTable(name string) (string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	quoted := make([]string, len(parts))
	for i, part := range parts {
		q, err := b.QuoteIdent(part)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, "."), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// TypeForDataType maps a database column type to the filter control that suits it
func TypeForDataType(dataType string) models.FilterType {
	dataType = strings.ToLower(dataType)
	switch {
	case strings.Contains(dataType, "date") || strings.Contains(dataType, "time"):
		return models.FilterDateRange
	case strings.Contains(dataType, "bool") || strings.Contains(dataType, "enum"):
		return models.FilterSelect
	case strings.Contains(dataType, "int") || strings.Contains(dataType, "numeric") ||
		strings.Contains(dataType, "decimal") || strings.Contains(dataType, "real") ||
		strings.Contains(dataType, "double") || strings.Contains(dataType, "float"):
		return models.FilterSelect
	default:
		return models.FilterText
	}
}

// InferFieldTypes fills the Type of untyped fields from their column's
// database type. It reports whether any field changed.
func InferFieldTypes(fields []models.FilterField, types map[string]string) ([]models.FilterField, bool) {
	if len(types) == 0 {
		return fields, false
	}
	out := make([]models.FilterField, len(fields))
	changed := false
	for i, f := range fields {
		if dataType, ok := types[f.Key]; ok && f.Type == "" {
			f.Type = TypeForDataType(dataType)
			changed = true
		}
		out[i] = f
	}
	return out, changed
}
