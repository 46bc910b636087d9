package databricks

import (
	"encoding/json"
	"fmt"
)

// ListTablesOptions narrows SHOW TABLES to a catalog/schema pair.
type ListTablesOptions struct {
	Catalog string
	Schema  string
}

// ListTables lists tables, optionally within catalog.schema.
func (c *Client) ListTables(opts ListTablesOptions) ([]TableInfo, error) {
	target := ""
	if opts.Catalog != "" && opts.Schema != "" {
		target = opts.Catalog + "." + opts.Schema
	} else if opts.Schema != "" {
		target = opts.Schema
	}
	sql := "SHOW TABLES"
	if target != "" {
		sql = "SHOW TABLES IN " + target
	}
	result, err := c.ExecuteStatement(sql)
	if err != nil {
		return nil, err
	}
	retval := make([]TableInfo, 0, len(result.Rows))
	for _, row := range result.Rows {
		retval = append(retval, parseTableRow(row, result.Columns, opts))
	}
	return retval, nil
}

// parseTableRow maps one SHOW TABLES row to a TableInfo using candidate
// column names, falling back to the first column for the table name.
func parseTableRow(row []interface{}, cols []Column, opts ListTablesOptions) TableInfo {
	getValue := func(candidates []string) string {
		i := findColumn(cols, candidates)
		if i >= 0 && i < len(row) {
			return cellToString(row[i])
		}
		return ""
	}
	schema := opts.Schema
	if schema == "" {
		schema = getValue([]string{"database", "namespace", "schema"})
	}
	name := getValue([]string{"tablename", "table_name", "name"})
	if name == "" && len(row) > 0 { // fall back to the first column...
		name = cellToString(row[0])
	}
	return TableInfo{
		Catalog: opts.Catalog,
		Schema:  schema,
		Name:    name,
	}
}

// cellToString renders one result cell as a string.
func cellToString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// cellToInt64 parses a numeric result cell.
func cellToInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Int64()
	case string:
		var n json.Number = json.Number(x)
		return n.Int64()
	case float64:
		return int64(x), nil
	case int64:
		return x, nil
	default:
		return 0, fmt.Errorf("unexpected cell type %T", v)
	}
}
