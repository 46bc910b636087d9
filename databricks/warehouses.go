package databricks

type rawWarehouse struct {
	Id          string `json:"id"`
	WarehouseId string `json:"warehouse_id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Size        string `json:"size"`
}

type listWarehousesResponse struct {
	Warehouses []rawWarehouse `json:"warehouses"`
}

// ListWarehouses returns the SQL warehouses visible in the workspace.
// Older API versions report the id under warehouse_id, so both are accepted.
func (c *Client) ListWarehouses() ([]Warehouse, error) {
	resp := &listWarehousesResponse{}
	if err := c.get("list warehouses", "/api/2.0/sql/warehouses", nil, resp); err != nil {
		return nil, err
	}
	retval := make([]Warehouse, 0, len(resp.Warehouses))
	for _, w := range resp.Warehouses {
		id := w.Id
		if id == "" {
			id = w.WarehouseId
		}
		retval = append(retval, Warehouse{Id: id, Name: w.Name, State: w.State, Size: w.Size})
	}
	return retval, nil
}
