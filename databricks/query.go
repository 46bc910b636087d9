package databricks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const (
	maxQueryAttempts = 3
	retryBackoffUnit = 500 * time.Millisecond
	statementWait    = "30s"
	statementPoll    = 2 * time.Second
)

// QueryError is the typed failure returned once all retries are exhausted.
type QueryError struct {
	Code    string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

type statementRequest struct {
	Statement     string `json:"statement"`
	WarehouseId   string `json:"warehouse_id"`
	WaitTimeout   string `json:"wait_timeout"`
	OnWaitTimeout string `json:"on_wait_timeout"`
	Format        string `json:"format"`
	Disposition   string `json:"disposition"`
}

type statementError struct {
	Message string `json:"message"`
}

type statementStatus struct {
	State string          `json:"state"`
	Error *statementError `json:"error,omitempty"`
}

type manifestColumn struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name"`
	TypeText string `json:"type_text"`
	Position int    `json:"position"`
	Nullable *bool  `json:"nullable,omitempty"`
}

type statementManifest struct {
	Schema struct {
		Columns []manifestColumn `json:"columns"`
	} `json:"schema"`
	TotalChunkCount int `json:"total_chunk_count"`
}

type statementChunk struct {
	ChunkIndex     int             `json:"chunk_index"`
	RowCount       int64           `json:"row_count"`
	DataArray      json.RawMessage `json:"data_array"`
	NextChunkIndex *int            `json:"next_chunk_index,omitempty"`
}

type statementResponse struct {
	StatementId string             `json:"statement_id"`
	Status      statementStatus    `json:"status"`
	Manifest    *statementManifest `json:"manifest,omitempty"`
	Result      *statementChunk    `json:"result,omitempty"`
}

// ExecuteStatement runs sql on the configured SQL warehouse and returns the
// normalised tabular result. Any failure is retried up to maxQueryAttempts
// with linearly increasing backoff; the final failure is converted into a
// QueryError so callers see one stable error type.
func (c *Client) ExecuteStatement(sql string) (*QueryResult, error) {
	attempt := 0
	for {
		res, err := c.executeStatementOnce(sql)
		if err == nil {
			return res, nil
		}
		attempt++
		if attempt >= maxQueryAttempts { // if this was the last attempt...
			return nil, &QueryError{Code: "QUERY_FAILED", Message: err.Error()}
		}
		c.log.Warn("query attempt ", attempt, " failed, retrying: ", err)
		c.sleep(time.Duration(attempt) * retryBackoffUnit)
	}
}

// executeStatementOnce submits the statement, waits for it to reach a
// terminal state and gathers all result chunks. The statement is cancelled
// on every non-successful exit path so warehouse resources are released.
func (c *Client) executeStatementOnce(sql string) (retval *QueryResult, err error) {
	req := &statementRequest{
		Statement:     sql,
		WarehouseId:   c.warehouseId(),
		WaitTimeout:   statementWait,
		OnWaitTimeout: "CONTINUE",
		Format:        "JSON_ARRAY",
		Disposition:   "INLINE",
	}
	resp := &statementResponse{}
	if err = c.post("execute statement", "/api/2.0/sql/statements", req, resp); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && resp.StatementId != "" { // if we are bailing out with a statement possibly still live...
			c.cancelStatement(resp.StatementId)
		}
	}()
	// Wait for a terminal statement state.
	for resp.Status.State == "PENDING" || resp.Status.State == "RUNNING" {
		c.sleep(statementPoll)
		next := &statementResponse{}
		if err = c.get("fetch statement status", "/api/2.0/sql/statements/"+resp.StatementId, nil, next); err != nil {
			return nil, err
		}
		next.StatementId = resp.StatementId
		resp = next
	}
	if resp.Status.State != "SUCCEEDED" {
		msg := "statement " + resp.Status.State
		if resp.Status.Error != nil && resp.Status.Error.Message != "" {
			msg = resp.Status.Error.Message
		}
		return nil, errors.New(msg)
	}
	// Gather rows across all chunks, normalising the shape once at this boundary.
	var meta []Column
	if resp.Manifest != nil {
		meta = columnsFromManifest(resp.Manifest.Schema.Columns)
	}
	rows := newRawRows()
	chunk := resp.Result
	for chunk != nil {
		if len(chunk.DataArray) > 0 {
			if err = rows.parse(chunk.DataArray); err != nil {
				return nil, errors.Wrap(err, "unable to parse statement result rows")
			}
		}
		if chunk.NextChunkIndex == nil {
			break
		}
		next := &statementChunk{}
		p := fmt.Sprintf("/api/2.0/sql/statements/%v/result/chunks/%v", resp.StatementId, *chunk.NextChunkIndex)
		if err = c.get("fetch statement chunk", p, nil, next); err != nil {
			return nil, err
		}
		chunk = next
	}
	return rows.normalize(meta), nil
}

// cancelStatement is best-effort cleanup; a failure to cancel must never
// replace the error that got us here.
func (c *Client) cancelStatement(id string) {
	if err := c.post("cancel statement", "/api/2.0/sql/statements/"+id+"/cancel", nil, nil); err != nil {
		c.log.Debug("unable to cancel statement ", id, ": ", err)
	}
}

func columnsFromManifest(cols []manifestColumn) []Column {
	retval := make([]Column, len(cols))
	for i, mc := range cols {
		name := mc.Name
		if name == "" {
			name = fmt.Sprintf("col_%v", i)
		}
		typ := mc.TypeName
		if typ == "" {
			typ = mc.TypeText
		}
		if typ == "" {
			typ = "string"
		}
		retval[i] = Column{Name: name, Type: typ, Nullable: mc.Nullable}
	}
	return retval
}
