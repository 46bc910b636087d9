package databricks

import "strings"

// ListCatalogs returns the catalog names visible in the connected warehouse.
// Different warehouse versions label the name column differently, so a list
// of candidates is tried before falling back to the first column.
func (c *Client) ListCatalogs() ([]string, error) {
	result, err := c.ExecuteStatement("SHOW CATALOGS")
	if err != nil {
		return nil, err
	}
	nameIndex := findColumn(result.Columns, []string{"catalog_name", "catalog", "name"})
	if nameIndex < 0 && len(result.Columns) > 0 {
		nameIndex = 0
	}
	catalogs := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if nameIndex < 0 || nameIndex >= len(row) {
			continue
		}
		if s := cellToString(row[nameIndex]); strings.TrimSpace(s) != "" {
			catalogs = append(catalogs, s)
		}
	}
	// The well-known samples catalog is shared and may be missing from
	// SHOW CATALOGS output even when accessible; probe for it.
	if !containsString(catalogs, "samples") {
		if probe, err := c.ExecuteStatement("SHOW SCHEMAS IN samples"); err == nil && len(probe.Rows) > 0 {
			catalogs = append(catalogs, "samples")
		}
	}
	return catalogs, nil
}

// findColumn returns the index of the first column whose lower-cased name
// matches one of the candidates, searching candidates in priority order.
func findColumn(cols []Column, candidates []string) int {
	for _, candidate := range candidates {
		for i, col := range cols {
			if strings.ToLower(col.Name) == candidate {
				return i
			}
		}
	}
	return -1
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
