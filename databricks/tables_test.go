package databricks

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBuildAccuWeatherSql(t *testing.T) {
	sql := buildAccuWeatherSql(AccuWeatherQueryOptions{})
	if sql != "SELECT * FROM samples.accuweather.daily_weather_data LIMIT 100" {
		t.Fatal("unexpected default sql: ", sql)
	}
	sql = buildAccuWeatherSql(AccuWeatherQueryOptions{
		City:      "O'Fallon",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Limit:     9999,
	})
	if !strings.Contains(sql, "city = 'O''Fallon'") {
		t.Fatal("expected quote escaping in: ", sql)
	}
	if !strings.Contains(sql, "date >= DATE '2024-01-01' AND date <= DATE '2024-01-31'") {
		t.Fatal("unexpected date bounds in: ", sql)
	}
	if !strings.HasSuffix(sql, "LIMIT 500") {
		t.Fatal("expected limit cap in: ", sql)
	}
}

func TestFindColumn(t *testing.T) {
	cols := []Column{{Name: "Database"}, {Name: "tableName"}}
	if i := findColumn(cols, []string{"tablename", "name"}); i != 1 {
		t.Fatal("expected case-insensitive match at 1, got ", i)
	}
	if i := findColumn(cols, []string{"comment"}); i != -1 {
		t.Fatal("expected -1 for no match, got ", i)
	}
}

func TestParseTableRow(t *testing.T) {
	cols := []Column{{Name: "database"}, {Name: "tableName"}, {Name: "isTemporary"}}
	info := parseTableRow([]interface{}{"sales", "orders", false}, cols, ListTablesOptions{Catalog: "main"})
	if info.Catalog != "main" || info.Schema != "sales" || info.Name != "orders" {
		t.Fatal("unexpected table info: ", info)
	}
	// Unrecognised columns fall back to the first cell for the name.
	info = parseTableRow([]interface{}{"events"}, []Column{{Name: "col_0"}}, ListTablesOptions{Schema: "logs"})
	if info.Schema != "logs" || info.Name != "events" {
		t.Fatal("unexpected fallback table info: ", info)
	}
}

func TestCellToInt64(t *testing.T) {
	if n, err := cellToInt64(json.Number("42")); err != nil || n != 42 {
		t.Fatal("json.Number: ", n, err)
	}
	if n, err := cellToInt64("17"); err != nil || n != 17 {
		t.Fatal("string: ", n, err)
	}
	if _, err := cellToInt64(true); err == nil {
		t.Fatal("expected error for bool cell")
	}
}
