package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/lazylist/internal/filter"
	"github.com/rebeliceyang/lazylist/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseCSV(t *testing.T) {
	columns, rows, err := ParseCSV(strings.NewReader("name,city\n\"Acme, Inc.\",Paris\nGlobex\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "city"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme, Inc.", rows[0]["name"])
	assert.Nil(t, rows[1]["city"])
}

func TestParseCSV_Empty(t *testing.T) {
	columns, rows, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, columns)
	assert.Nil(t, rows)
}

func TestParseJSON(t *testing.T) {
	columns, rows, err := ParseJSON([]byte(`[{"id": 7, "name": "Acme"}, {"id": 8, "tags": ["a"]}]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "tags"}, columns)
	assert.Equal(t, "7", rows[0].ID())
	assert.Equal(t, `["a"]`, models.FormatValue(rows[1]["tags"]))

	_, _, err = ParseJSON([]byte(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	columns, rows, err := ParseYAML([]byte("- name: Acme\n  total: 10\n- name: Globex\n  total: 20.5\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "total"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "20.5", models.FormatValue(rows[1]["total"]))
}

func TestFileSource_AssignsIDsAndWindows(t *testing.T) {
	path := writeFile(t, "clients.csv", "name\nA\nB\nC\n")
	src, err := Open(context.Background(), models.SourceConfig{Path: path}, nil, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	res, err := src.Load(context.Background(), Request{Limit: 2, Offset: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "2", res.Rows[0].ID())
	assert.Equal(t, "B", res.Rows[0]["name"])
}

func TestFileSource_IDColumn(t *testing.T) {
	path := writeFile(t, "clients.yaml", "- code: X1\n- code: X2\n")
	src := NewFileSource(models.SourceConfig{Kind: models.SourceYAML, Path: path, IDColumn: "code"})

	res, err := src.Load(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "X2", res.Rows[1].ID())
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(models.SourceConfig{Kind: models.SourceJSON, Path: filepath.Join(t.TempDir(), "none.json")})
	_, err := src.Load(context.Background(), Request{})
	assert.Error(t, err)
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := Open(context.Background(), models.SourceConfig{Path: "data.txt"}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`
		CREATE TABLE invoices (id INTEGER PRIMARY KEY, client TEXT, status TEXT, issued TEXT, total REAL);
		INSERT INTO invoices (client, status, issued, total) VALUES
			('Acme', 'Paid', '2024-03-01', 120.0),
			('Globex', 'Paid', '2024-03-15', 80.0),
			('Acme', 'Due', '2024-04-02', 300.0);
	`)
	require.NoError(t, err)
	return path
}

func TestSQLiteSource_Pushdown(t *testing.T) {
	ctx := context.Background()
	fields := []models.FilterField{
		{Key: "status", Type: models.FilterSelect},
		{Key: "issued", Type: models.FilterDateRange},
	}
	src, err := Open(ctx, models.SourceConfig{Path: seedSQLite(t), Table: "invoices"}, fields, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	res, err := src.Load(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Rows, 3)
	assert.Equal(t, "id", res.Columns[0])
	assert.Equal(t, "TEXT", res.Types["issued"])
	assert.Equal(t, "REAL", res.Types["total"])

	res, err = src.Load(ctx, Request{Query: filter.Query{
		Filters: models.FilterSet{
			"status": models.SelectValue("Paid"),
			"issued": models.DateRangeValue("2024-03-10", ""),
		},
		Logic: models.LogicAnd,
	}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Globex", res.Rows[0]["client"])

	res, err = src.Load(ctx, Request{
		Query: filter.Query{Search: "acme", SearchColumns: []string{"client"}, SortKey: "total", SortDir: models.SortDesc},
		Limit: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "3", res.Rows[0].ID())
}

func TestSQLiteSource_Query(t *testing.T) {
	ctx := context.Background()
	cfg := models.SourceConfig{
		Kind:  models.SourceSQLite,
		Path:  seedSQLite(t),
		Query: "SELECT client AS name, SUM(total) AS total FROM invoices GROUP BY client",
	}
	src, err := Open(ctx, cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	res, err := src.Load(ctx, Request{Query: filter.Query{SortKey: "name"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"id", "name", "total"}, res.Columns)
	assert.Equal(t, "1", res.Rows[0].ID())
	assert.Equal(t, "Acme", res.Rows[0]["name"])
}

func TestSQLiteSource_MissingFile(t *testing.T) {
	_, err := NewSQLiteSource(context.Background(), models.SourceConfig{Path: filepath.Join(t.TempDir(), "x.db")}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestResolvePassword(t *testing.T) {
	keyring.MockInit()
	conn := models.ConnectionConfig{Host: "db", Port: 5432, User: "app", Database: "crm"}

	got, err := ResolvePassword(conn)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, StorePassword(conn, "s3cret"))
	got, err = ResolvePassword(conn)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	conn.Password = "inline"
	got, err = ResolvePassword(conn)
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	conn.Password = ""
	require.NoError(t, ForgetPassword(conn))
	require.NoError(t, ForgetPassword(conn))
	got, err = ResolvePassword(conn)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildConnectionString(t *testing.T) {
	got := buildConnectionString(models.ConnectionConfig{Host: "db", User: "app", Database: "crm"})
	assert.Equal(t, "host=db port=5432 user=app database=crm sslmode=prefer", got)
}
