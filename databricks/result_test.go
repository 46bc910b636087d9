package databricks

import (
	"encoding/json"
	"testing"
)

func TestParsePositionalRows(t *testing.T) {
	raw := json.RawMessage(`[["1","alice"],["2","bob"]]`)
	rows := newRawRows()
	if err := rows.parse(raw); err != nil {
		t.Fatal("expected positional rows to parse, got: ", err)
	}
	meta := []Column{{Name: "id", Type: "int"}, {Name: "name", Type: "string"}}
	result := rows.normalize(meta)
	if len(result.Columns) != 2 || result.Columns[0].Name != "id" {
		t.Fatal("expected metadata columns to be used, got: ", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatal("expected 2 rows, got: ", len(result.Rows))
	}
	if result.Rows[1][1] != "bob" {
		t.Fatal("unexpected cell value: ", result.Rows[1][1])
	}
}

func TestParseKeyedRowsSynthesisesColumnsFromFirstRowKeyOrder(t *testing.T) {
	raw := json.RawMessage(`[{"zeta":1,"alpha":"x","mid":true},{"alpha":"y","zeta":2}]`)
	rows := newRawRows()
	if err := rows.parse(raw); err != nil {
		t.Fatal("expected keyed rows to parse, got: ", err)
	}
	result := rows.normalize(nil)
	// Column order must follow the first row's key order, not sorted order.
	want := []string{"zeta", "alpha", "mid"}
	if len(result.Columns) != len(want) {
		t.Fatal("unexpected column count: ", len(result.Columns))
	}
	for i, name := range want {
		if result.Columns[i].Name != name {
			t.Fatal("expected column ", i, " to be ", name, ", got: ", result.Columns[i].Name)
		}
	}
	// The second row is realigned to the synthesised columns; the missing
	// key yields nil.
	if result.Rows[1][2] != nil {
		t.Fatal("expected nil for missing key, got: ", result.Rows[1][2])
	}
	if result.Rows[1][1] != "y" {
		t.Fatal("expected realigned cell, got: ", result.Rows[1][1])
	}
}

func TestParseRejectsMixedRowShapes(t *testing.T) {
	rows := newRawRows()
	if err := rows.parse(json.RawMessage(`[["1"],{"a":1}]`)); err == nil {
		t.Fatal("expected mixed row shapes to be rejected")
	}
}

func TestNormalizePositionalWithoutMetadata(t *testing.T) {
	rows := newRawRows()
	if err := rows.parse(json.RawMessage(`[["a","b","c"]]`)); err != nil {
		t.Fatal(err)
	}
	result := rows.normalize(nil)
	if len(result.Columns) != 3 || result.Columns[2].Name != "col_2" {
		t.Fatal("expected synthesised positional column names, got: ", result.Columns)
	}
}

func TestParseAccumulatesAcrossChunks(t *testing.T) {
	rows := newRawRows()
	if err := rows.parse(json.RawMessage(`[["1"]]`)); err != nil {
		t.Fatal(err)
	}
	if err := rows.parse(json.RawMessage(`[["2"],["3"]]`)); err != nil {
		t.Fatal(err)
	}
	result := rows.normalize([]Column{{Name: "n", Type: "int"}})
	if len(result.Rows) != 3 {
		t.Fatal("expected rows from both chunks, got: ", len(result.Rows))
	}
}

func TestNormalizeEmptyResult(t *testing.T) {
	rows := newRawRows()
	result := rows.normalize([]Column{{Name: "n", Type: "int"}})
	if result.Rows == nil || len(result.Rows) != 0 {
		t.Fatal("expected empty non-nil rows, got: ", result.Rows)
	}
}
