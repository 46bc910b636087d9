package databricks

import (
	"bytes"
	"encoding/json"
	"fmt"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
)

// rawRows is the tagged variant produced at the driver boundary: either
// positional rows (cells aligned with column metadata) or keyed rows
// (objects with no metadata). Downstream code only ever sees the canonical
// QueryResult this gets normalised into.
type rawRows struct {
	positional [][]interface{}
	keyed      []*om.OrderedMap
}

func newRawRows() *rawRows {
	return &rawRows{}
}

// parse appends the rows encoded in raw, which must be a JSON array whose
// elements are all arrays (positional) or all objects (keyed). Mixing shapes
// across chunks is rejected.
func (r *rawRows) parse(raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return errors.New("result rows are not a JSON array")
	}
	for dec.More() { // for each row...
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		d, ok := tok.(json.Delim)
		if !ok {
			return errors.Errorf("unexpected row token %v", tok)
		}
		switch d {
		case '[': // positional row...
			if len(r.keyed) > 0 {
				return errors.New("mixed positional and keyed rows in result")
			}
			row := make([]interface{}, 0, 8)
			for dec.More() {
				var v interface{}
				if err := dec.Decode(&v); err != nil {
					return err
				}
				row = append(row, v)
			}
			if _, err := dec.Token(); err != nil { // consume closing ]
				return err
			}
			r.positional = append(r.positional, row)
		case '{': // keyed row...
			if len(r.positional) > 0 {
				return errors.New("mixed positional and keyed rows in result")
			}
			row := om.NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyTok.(string)
				if !ok {
					return errors.Errorf("unexpected object key token %v", keyTok)
				}
				var v interface{}
				if err := dec.Decode(&v); err != nil {
					return err
				}
				row.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // consume closing }
				return err
			}
			r.keyed = append(r.keyed, row)
		default:
			return errors.Errorf("unexpected row delimiter %v", d)
		}
	}
	return nil
}

// normalize converts the variant into the canonical QueryResult.
// Positional rows take their columns from the supplied metadata; keyed rows
// synthesise columns from the key order of the first row and realign every
// row to that order, with nil for missing keys.
func (r *rawRows) normalize(meta []Column) *QueryResult {
	if len(r.keyed) > 0 { // if the driver returned object rows with no metadata...
		cols := make([]Column, 0, 8)
		iter := r.keyed[0].IterFunc()
		for kv, ok := iter(); ok; kv, ok = iter() {
			cols = append(cols, Column{Name: kv.Key.(string), Type: "string", Nullable: nil})
		}
		rows := make([][]interface{}, len(r.keyed))
		for i, keyedRow := range r.keyed {
			row := make([]interface{}, len(cols))
			for j, col := range cols {
				if v, ok := keyedRow.Get(col.Name); ok {
					row[j] = v
				}
			}
			rows[i] = row
		}
		return &QueryResult{Columns: cols, Rows: rows}
	}
	rows := r.positional
	if rows == nil {
		rows = make([][]interface{}, 0)
	}
	cols := meta
	if len(cols) == 0 { // if positional rows arrived without metadata...
		width := 0
		if len(rows) > 0 {
			width = len(rows[0])
		}
		cols = make([]Column, width)
		for i := range cols {
			cols[i] = Column{Name: fmt.Sprintf("col_%v", i), Type: "string", Nullable: nil}
		}
	}
	return &QueryResult{Columns: cols, Rows: rows}
}
