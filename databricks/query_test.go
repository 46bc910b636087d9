package databricks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bricklake/bricksync/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := logger.NewLogger("bricksync-test", "error", false)
	c, err := NewClient(log, ClientConfig{
		Host:     srv.URL,
		Token:    "dapi-test",
		HttpPath: "/sql/1.0/warehouses/wh123",
	})
	if err != nil {
		t.Fatal(err)
	}
	sleeps := &[]time.Duration{}
	c.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return c, srv, sleeps
}

func TestExecuteStatementSuccess(t *testing.T) {
	var gotWarehouse string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.0/sql/statements" {
			t.Fatal("unexpected path: ", r.URL.Path)
		}
		var req statementRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotWarehouse = req.WarehouseId
		fmt.Fprint(w, `{
			"statement_id": "st1",
			"status": {"state": "SUCCEEDED"},
			"manifest": {"schema": {"columns": [
				{"name": "id", "type_name": "INT", "position": 0},
				{"name": "city", "type_name": "STRING", "position": 1}
			]}},
			"result": {"chunk_index": 0, "row_count": 1, "data_array": [["7", "Leeds"]]}
		}`)
	})
	c, _, _ := newTestClient(t, handler)
	result, err := c.ExecuteStatement("SELECT id, city FROM t")
	if err != nil {
		t.Fatal("expected statement to succeed, got: ", err)
	}
	if gotWarehouse != "wh123" {
		t.Fatal("expected warehouse id from the HTTP path, got: ", gotWarehouse)
	}
	if len(result.Columns) != 2 || result.Columns[1].Name != "city" {
		t.Fatal("unexpected columns: ", result.Columns)
	}
	if result.Rows[0][1] != "Leeds" {
		t.Fatal("unexpected row data: ", result.Rows)
	}
}

func TestExecuteStatementRetriesWithLinearBackoff(t *testing.T) {
	var calls int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if n < 3 { // first two attempts fail...
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"message": "warehouse starting"}`)
			return
		}
		fmt.Fprint(w, `{
			"statement_id": "st1",
			"status": {"state": "SUCCEEDED"},
			"manifest": {"schema": {"columns": [{"name": "n", "type_name": "INT", "position": 0}]}},
			"result": {"chunk_index": 0, "row_count": 1, "data_array": [["1"]]}
		}`)
	})
	c, _, sleeps := newTestClient(t, handler)
	result, err := c.ExecuteStatement("SELECT 1")
	if err != nil {
		t.Fatal("expected retry to eventually succeed, got: ", err)
	}
	if len(result.Rows) != 1 {
		t.Fatal("unexpected rows: ", result.Rows)
	}
	if atomic.LoadInt64(&calls) != 3 {
		t.Fatal("expected 3 attempts, got: ", calls)
	}
	// Linear backoff: attempt*unit.
	if len(*sleeps) != 2 || (*sleeps)[0] != retryBackoffUnit || (*sleeps)[1] != 2*retryBackoffUnit {
		t.Fatal("expected linear backoff sleeps, got: ", *sleeps)
	}
}

func TestExecuteStatementReturnsTypedErrorAfterMaxAttempts(t *testing.T) {
	var calls int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "bad gateway")
	})
	c, _, _ := newTestClient(t, handler)
	_, err := c.ExecuteStatement("SELECT 1")
	if err == nil {
		t.Fatal("expected failure after exhausted retries")
	}
	qe, ok := err.(*QueryError)
	if !ok {
		t.Fatalf("expected *QueryError, got %T: %v", err, err)
	}
	if qe.Code != "QUERY_FAILED" {
		t.Fatal("unexpected error code: ", qe.Code)
	}
	if atomic.LoadInt64(&calls) != maxQueryAttempts {
		t.Fatal("expected bounded attempts, got: ", calls)
	}
}

func TestExecuteStatementPollsAndCancelsOnFailure(t *testing.T) {
	var cancelled int64
	var polls int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/2.0/sql/statements":
			fmt.Fprint(w, `{"statement_id": "st9", "status": {"state": "RUNNING"}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/2.0/sql/statements/st9":
			if atomic.AddInt64(&polls, 1) < 2 {
				fmt.Fprint(w, `{"status": {"state": "RUNNING"}}`)
				return
			}
			fmt.Fprint(w, `{"status": {"state": "FAILED", "error": {"message": "quota exceeded"}}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/2.0/sql/statements/st9/cancel":
			atomic.AddInt64(&cancelled, 1)
			fmt.Fprint(w, `{}`)
		default:
			t.Fatal("unexpected request: ", r.Method, " ", r.URL.Path)
		}
	})
	c, _, _ := newTestClient(t, handler)
	_, err := c.executeStatementOnce("SELECT 1")
	if err == nil {
		t.Fatal("expected failed statement to error")
	}
	if atomic.LoadInt64(&cancelled) != 1 {
		t.Fatal("expected statement to be cancelled on the failure path")
	}
}
