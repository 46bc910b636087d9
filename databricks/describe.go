package databricks

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DescribeTableColumns returns the column names and types of a table.
// Partition and comment sections of DESCRIBE output are skipped.
func (c *Client) DescribeTableColumns(table string) ([]Column, error) {
	result, err := c.ExecuteStatement("DESCRIBE TABLE " + table)
	if err != nil {
		return nil, err
	}
	nameIdx := findColumn(result.Columns, []string{"col_name", "name"})
	typeIdx := findColumn(result.Columns, []string{"data_type", "type"})
	if nameIdx < 0 || typeIdx < 0 {
		return nil, errors.Errorf("unexpected DESCRIBE TABLE output for %v", table)
	}
	cols := make([]Column, 0, len(result.Rows))
	for _, row := range result.Rows {
		if nameIdx >= len(row) || typeIdx >= len(row) {
			continue
		}
		name := cellToString(row[nameIdx])
		if name == "" || strings.HasPrefix(name, "#") { // blank or section marker rows end the column list...
			break
		}
		cols = append(cols, Column{Name: name, Type: cellToString(row[typeIdx])})
	}
	if len(cols) == 0 {
		return nil, errors.Errorf("no columns found for table %v", table)
	}
	return cols, nil
}

// InferColumnsFromQuery derives the column list of an arbitrary query by
// executing it with LIMIT 0 and taking the result metadata.
func (c *Client) InferColumnsFromQuery(sql string) ([]Column, error) {
	result, err := c.ExecuteStatement(fmt.Sprintf("SELECT * FROM (%v) LIMIT 0", stripTrailingSemicolon(sql)))
	if err != nil {
		return nil, err
	}
	if len(result.Columns) == 0 {
		return nil, errors.New("query produced no column metadata")
	}
	return result.Columns, nil
}

// CountRowsForQuery counts the rows the given query would produce.
func (c *Client) CountRowsForQuery(sql string) (int64, error) {
	result, err := c.ExecuteStatement(fmt.Sprintf("SELECT COUNT(*) FROM (%v)", stripTrailingSemicolon(sql)))
	if err != nil {
		return 0, err
	}
	if len(result.Rows) == 0 || len(result.Rows[0]) == 0 {
		return 0, errors.New("count query returned no rows")
	}
	n, err := cellToInt64(result.Rows[0][0])
	if err != nil {
		return 0, errors.Wrap(err, "unable to parse count query result")
	}
	return n, nil
}

func stripTrailingSemicolon(sql string) string {
	return strings.TrimRight(strings.TrimSpace(sql), ";")
}
