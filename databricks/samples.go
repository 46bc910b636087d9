package databricks

// ListSampleSchemas lists the schemas under the shared samples catalog.
func (c *Client) ListSampleSchemas() (*QueryResult, error) {
	return c.ExecuteStatement("SHOW SCHEMAS IN samples")
}
