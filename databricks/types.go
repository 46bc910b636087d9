package databricks

import "strings"

// Column describes one column of a query result.
// Nullable is nil when the warehouse did not report nullability.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable *bool  `json:"nullable"`
}

// QueryResult is the canonical tabular shape every query is normalised into:
// ordered columns plus rows of cells positionally aligned with them.
type QueryResult struct {
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Warehouse is one SQL warehouse in the workspace.
type Warehouse struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
	Size  string `json:"size,omitempty"`
}

// TableInfo describes one table from SHOW TABLES.
type TableInfo struct {
	Catalog string `json:"catalog,omitempty"`
	Schema  string `json:"schema,omitempty"`
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

// Job life-cycle and result states as reported by the Jobs 2.1 API.
const (
	LifeCycleStatePending       = "PENDING"
	LifeCycleStateRunning       = "RUNNING"
	LifeCycleStateTerminating   = "TERMINATING"
	LifeCycleStateTerminated    = "TERMINATED"
	LifeCycleStateSkipped       = "SKIPPED"
	LifeCycleStateInternalError = "INTERNAL_ERROR"

	ResultStateSuccess  = "SUCCESS"
	ResultStateFailed   = "FAILED"
	ResultStateTimedOut = "TIMEDOUT"
	ResultStateCanceled = "CANCELED"
)

// JobRunResult is the response to triggering a job run.
type JobRunResult struct {
	RunId       int64 `json:"run_id"`
	NumberInJob int64 `json:"number_in_job"`
}

// RunState is the state block of a job run or task run.
type RunState struct {
	LifeCycleState string `json:"life_cycle_state"`
	ResultState    string `json:"result_state,omitempty"`
	StateMessage   string `json:"state_message,omitempty"`
}

// IsTerminal reports whether no further state change will occur for this run.
func (s RunState) IsTerminal() bool {
	switch s.LifeCycleState {
	case LifeCycleStateTerminated, LifeCycleStateSkipped, LifeCycleStateInternalError:
		return true
	}
	return false
}

// TaskRun is one task within a job run.
type TaskRun struct {
	RunId   int64    `json:"run_id"`
	TaskKey string   `json:"task_key"`
	State   RunState `json:"state"`
}

// RunStatus is the status of a job run including its tasks.
type RunStatus struct {
	RunId int64     `json:"run_id"`
	State RunState  `json:"state"`
	Tasks []TaskRun `json:"tasks,omitempty"`
}

// RunOutput is diagnostic output for a single (task) run.
type RunOutput struct {
	Error      string `json:"error,omitempty"`
	ErrorTrace string `json:"error_trace,omitempty"`
	Logs       string `json:"logs,omitempty"`
}

// Text flattens whichever diagnostic fields are populated into one string.
func (o *RunOutput) Text() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{o.Error, o.ErrorTrace, o.Logs} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
