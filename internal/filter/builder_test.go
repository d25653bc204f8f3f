package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazylist/internal/models"
)

var invoiceFields = []models.FilterField{
	{Key: "status", Type: models.FilterSelect},
	{Key: "client", Type: models.FilterMultiSelect},
	{Key: "notes", Type: models.FilterText},
	{Key: "issued", Type: models.FilterDate},
	{Key: "due", Type: models.FilterDateRange},
}

func TestBuildWhere_Empty(t *testing.T) {
	b := NewBuilder(Postgres, invoiceFields)
	where, args, err := b.BuildWhere(Query{Filters: models.FilterSet{"status": models.SelectValue("")}})
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestBuildWhere_PostgresAnd(t *testing.T) {
	b := NewBuilder(Postgres, invoiceFields)
	where, args, err := b.BuildWhere(Query{
		Filters: models.FilterSet{
			"status": models.SelectValue("Paid"),
			"client": models.MultiSelectValue("3", "5"),
		},
		Logic: models.LogicAnd,
	})
	require.NoError(t, err)

	// keys are evaluated in sorted order
	assert.Equal(t, `WHERE ("client"::text IN ($1, $2) AND "status"::text = $3)`, where)
	assert.Equal(t, []interface{}{"3", "5", "Paid"}, args)
}

func TestBuildWhere_MySQLOrWithSearch(t *testing.T) {
	b := NewBuilder(MySQL, invoiceFields)
	where, args, err := b.BuildWhere(Query{
		Search:        "50%",
		SearchColumns: []string{"name", "notes"},
		Filters: models.FilterSet{
			"status": models.SelectValue("Paid"),
			"notes":  models.TextValue("Urgent"),
		},
		Logic: models.LogicOr,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"WHERE (LOWER(CAST(`name` AS CHAR)) LIKE ? OR LOWER(CAST(`notes` AS CHAR)) LIKE ?) AND "+
			"(LOWER(CAST(`notes` AS CHAR)) LIKE ? OR CAST(`status` AS CHAR) = ?)",
		where)
	assert.Equal(t, []interface{}{`%50\%%`, `%50\%%`, "%urgent%", "Paid"}, args)
}

func TestBuildWhere_SearchKeepsWhitespace(t *testing.T) {
	b := NewBuilder(Postgres, invoiceFields)
	where, args, err := b.BuildWhere(Query{Search: "Acme ", SearchColumns: []string{"name"}})
	require.NoError(t, err)
	assert.Equal(t, `WHERE ("name"::text ILIKE $1)`, where)
	assert.Equal(t, []interface{}{"%acme %"}, args)
}

func TestBuildWhere_SQLiteDates(t *testing.T) {
	b := NewBuilder(SQLite, invoiceFields)
	where, args, err := b.BuildWhere(Query{
		Filters: models.FilterSet{
			"issued": models.DateValue("2024-03-15"),
			"due":    models.DateRangeValue("2024-01-01", "2024-01-31"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `WHERE (date("due") >= ? AND date("due") <= ? AND date("issued") = ?)`, where)
	assert.Equal(t, []interface{}{"2024-01-01", "2024-01-31", "2024-03-15"}, args)
}

func TestBuildWhere_PostgresDateArgs(t *testing.T) {
	b := NewBuilder(Postgres, invoiceFields)
	_, args, err := b.BuildWhere(Query{
		Filters: models.FilterSet{"due": models.DateRangeValue("", "2024-01-31T12:00:00Z")},
	})
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), args[0])
}

func TestBuildWhere_IllTypedCriteria(t *testing.T) {
	b := NewBuilder(Postgres, invoiceFields)
	set := models.FilterSet{
		"due":    models.SelectValue("2024-01-01"),
		"status": models.SelectValue("Paid"),
	}

	where, _, err := b.BuildWhere(Query{Filters: set, Logic: models.LogicAnd})
	require.NoError(t, err)
	assert.Equal(t, `WHERE ("status"::text = $1)`, where)

	// an absent criterion is true, so OR matches everything
	where, _, err = b.BuildWhere(Query{Filters: set, Logic: models.LogicOr})
	require.NoError(t, err)
	assert.Empty(t, where)
}

func TestBuildWhere_RejectsBadIdentifiers(t *testing.T) {
	b := NewBuilder(Postgres, nil)
	_, _, err := b.BuildWhere(Query{Filters: models.FilterSet{`x"; DROP TABLE t; --`: models.SelectValue("1")}})
	assert.True(t, errors.Is(err, ErrInvalidIdentifier))
}

func TestBuildSelect(t *testing.T) {
	b := NewBuilder(Postgres, invoiceFields)
	page, count, args, err := b.BuildSelect("public.invoices", Query{
		Filters: models.FilterSet{"status": models.SelectValue("Paid")},
		SortKey: "total",
		SortDir: models.SortDesc,
	}, 50, 100)
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "public"."invoices" WHERE ("status"::text = $1) ORDER BY "total" DESC LIMIT 50 OFFSET 100`, page)
	assert.Equal(t, `SELECT COUNT(*) FROM "public"."invoices" WHERE ("status"::text = $1)`, count)
	assert.Equal(t, []interface{}{"Paid"}, args)

	_, _, _, err = b.BuildSelect("a.b.c", Query{}, 0, 0)
	assert.Error(t, err)
}

func TestBuildSelect_NoConstraints(t *testing.T) {
	b := NewBuilder(MySQL, nil)
	page, count, args, err := b.BuildSelect("clients", Query{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `clients`", page)
	assert.Equal(t, "SELECT COUNT(*) FROM `clients`", count)
	assert.Empty(t, args)
}

func TestBuildSelectSubquery(t *testing.T) {
	b := NewBuilder(SQLite, nil)
	page, count, _, err := b.BuildSelectSubquery("SELECT * FROM invoices WHERE deleted = 0;", Query{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM (SELECT * FROM invoices WHERE deleted = 0) AS src LIMIT 10 OFFSET 0", page)
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT * FROM invoices WHERE deleted = 0) AS src", count)

	_, _, _, err = b.BuildSelectSubquery("  ", Query{}, 0, 0)
	assert.Error(t, err)
}

func TestTypeForDataType(t *testing.T) {
	cases := map[string]models.FilterType{
		"timestamp with time zone": models.FilterDateRange,
		"DATE":                     models.FilterDateRange,
		"boolean":                  models.FilterSelect,
		"integer":                  models.FilterSelect,
		"numeric(10,2)":            models.FilterSelect,
		"character varying":        models.FilterText,
		"text":                     models.FilterText,
	}
	for in, want := range cases {
		assert.Equal(t, want, TypeForDataType(in), in)
	}
}

func TestInferFieldTypes(t *testing.T) {
	fields := []models.FilterField{
		{Key: "issued"},
		{Key: "status", Type: models.FilterMultiSelect},
		{Key: "notes"},
		{Key: "computed"},
	}
	types := map[string]string{"issued": "DATE", "status": "TEXT", "notes": "TEXT"}

	got, changed := InferFieldTypes(fields, types)
	assert.True(t, changed)
	assert.Equal(t, models.FilterDateRange, got[0].Type)
	assert.Equal(t, models.FilterMultiSelect, got[1].Type)
	assert.Equal(t, models.FilterText, got[2].Type)
	assert.Equal(t, models.FilterType(""), got[3].Type)
	assert.Equal(t, models.FilterType(""), fields[0].Type)

	_, changed = InferFieldTypes(fields, nil)
	assert.False(t, changed)
}
