package databricks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestTriggerJobRun(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.1/jobs/run-now" {
			t.Fatal("unexpected path: ", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer dapi-test" {
			t.Fatal("missing bearer token")
		}
		var req runNowRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.JobId != 42 {
			t.Fatal("unexpected job id: ", req.JobId)
		}
		if req.JobParams["run_id"] != "abc" {
			t.Fatal("unexpected job params: ", req.JobParams)
		}
		fmt.Fprint(w, `{"run_id": 9001, "number_in_job": 3}`)
	})
	c, _, _ := newTestClient(t, handler)
	res, err := c.TriggerJobRun(42, map[string]string{"run_id": "abc"}, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if res.RunId != 9001 || res.NumberInJob != 3 {
		t.Fatal("unexpected run result: ", res)
	}
}

func TestGetRunStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.1/jobs/runs/get" || r.URL.Query().Get("run_id") != "9001" {
			t.Fatal("unexpected request: ", r.URL.String())
		}
		fmt.Fprint(w, `{
			"run_id": 9001,
			"state": {"life_cycle_state": "TERMINATED", "result_state": "FAILED", "state_message": "disk full"},
			"tasks": [{"run_id": 9002, "task_key": "export", "state": {"life_cycle_state": "TERMINATED", "result_state": "FAILED"}}]
		}`)
	})
	c, _, _ := newTestClient(t, handler)
	st, err := c.GetRunStatus(9001)
	if err != nil {
		t.Fatal(err)
	}
	if !st.State.IsTerminal() {
		t.Fatal("expected TERMINATED to be terminal")
	}
	if st.State.StateMessage != "disk full" {
		t.Fatal("unexpected state message: ", st.State.StateMessage)
	}
	if len(st.Tasks) != 1 || st.Tasks[0].RunId != 9002 {
		t.Fatal("unexpected tasks: ", st.Tasks)
	}
}

func TestEnsureExportJobFindsExisting(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.1/jobs/list" {
			t.Fatal("unexpected path: ", r.URL.Path)
		}
		fmt.Fprint(w, `{"jobs": [{"job_id": 77, "settings": {"name": "bricksync-export"}}], "has_more": false}`)
	})
	c, _, _ := newTestClient(t, handler)
	id, err := c.EnsureExportJob("bricksync-export")
	if err != nil {
		t.Fatal(err)
	}
	if id != 77 {
		t.Fatal("unexpected job id: ", id)
	}
}

func TestEnsureExportJobCreatesWhenAbsent(t *testing.T) {
	var created bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/2.1/jobs/list":
			fmt.Fprint(w, `{"jobs": [], "has_more": false}`)
		case "/api/2.1/jobs/create":
			created = true
			var spec exportJobSpec
			_ = json.NewDecoder(r.Body).Decode(&spec)
			if spec.Name != "bricksync-export" {
				t.Fatal("unexpected job name: ", spec.Name)
			}
			if len(spec.Tasks) != 1 || spec.Tasks[0].NotebookTask.NotebookPath == "" {
				t.Fatal("expected a notebook task in the created job")
			}
			fmt.Fprint(w, `{"job_id": 88}`)
		default:
			t.Fatal("unexpected path: ", r.URL.Path)
		}
	})
	c, _, _ := newTestClient(t, handler)
	id, err := c.EnsureExportJob("bricksync-export")
	if err != nil {
		t.Fatal(err)
	}
	if !created || id != 88 {
		t.Fatal("expected job to be created, got id: ", id)
	}
}

func TestRunStateIsTerminal(t *testing.T) {
	cases := []struct {
		state    string
		terminal bool
	}{
		{LifeCycleStatePending, false},
		{LifeCycleStateRunning, false},
		{LifeCycleStateTerminating, false},
		{LifeCycleStateTerminated, true},
		{LifeCycleStateSkipped, true},
		{LifeCycleStateInternalError, true},
	}
	for _, tc := range cases {
		s := RunState{LifeCycleState: tc.state}
		if s.IsTerminal() != tc.terminal {
			t.Fatal("unexpected IsTerminal for ", tc.state)
		}
	}
}
