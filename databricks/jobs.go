package databricks

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

type runNowRequest struct {
	JobId      int64             `json:"job_id"`
	JobParams  map[string]string `json:"job_parameters,omitempty"`
	IdempToken string            `json:"idempotency_token,omitempty"`
}

// TriggerJobRun starts an immediate run of the given job.
// API: POST /api/2.1/jobs/run-now
func (c *Client) TriggerJobRun(jobId int64, params map[string]string, idempotencyToken string) (*JobRunResult, error) {
	req := &runNowRequest{JobId: jobId, JobParams: params, IdempToken: idempotencyToken}
	resp := &JobRunResult{}
	if err := c.post("trigger job run", "/api/2.1/jobs/run-now", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetRunStatus fetches the status of a job run including its task runs.
// API: GET /api/2.1/jobs/runs/get
func (c *Client) GetRunStatus(runId int64) (*RunStatus, error) {
	q := url.Values{}
	q.Set("run_id", strconv.FormatInt(runId, 10))
	resp := &RunStatus{}
	if err := c.get("fetch run status", "/api/2.1/jobs/runs/get", q, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetRunOutput fetches the output of a single (task) run for diagnostics.
// API: GET /api/2.1/jobs/runs/get-output
func (c *Client) GetRunOutput(runId int64) (*RunOutput, error) {
	q := url.Values{}
	q.Set("run_id", strconv.FormatInt(runId, 10))
	resp := &RunOutput{}
	if err := c.get("fetch run output", "/api/2.1/jobs/runs/get-output", q, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type jobSummary struct {
	JobId    int64 `json:"job_id"`
	Settings struct {
		Name string `json:"name"`
	} `json:"settings"`
}

type listJobsResponse struct {
	Jobs    []jobSummary `json:"jobs"`
	HasMore bool         `json:"has_more"`
}

// ListJobsByName returns the ids of jobs whose name matches exactly.
// API: GET /api/2.1/jobs/list
func (c *Client) ListJobsByName(name string) ([]int64, error) {
	q := url.Values{}
	q.Set("name", name)
	resp := &listJobsResponse{}
	if err := c.get("list jobs", "/api/2.1/jobs/list", q, resp); err != nil {
		return nil, err
	}
	retval := make([]int64, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		if j.Settings.Name == name {
			retval = append(retval, j.JobId)
		}
	}
	return retval, nil
}

// exportNotebookPath is the workspace notebook the auto-created export job
// runs. The notebook reads the export_sql and run_id job parameters and
// executes the statement on the shared warehouse.
const exportNotebookPath = "/Shared/bricksync/export"

// exportJobSpec is the job definition created when the export job is absent.
type exportJobSpec struct {
	Name       string               `json:"name"`
	MaxRuns    int                  `json:"max_concurrent_runs"`
	Parameters []exportJobParameter `json:"parameters"`
	Tasks      []exportJobTask      `json:"tasks"`
}

type exportJobParameter struct {
	Name    string `json:"name"`
	Default string `json:"default"`
}

type exportJobTask struct {
	TaskKey      string             `json:"task_key"`
	NotebookTask exportNotebookTask `json:"notebook_task"`
}

type exportNotebookTask struct {
	NotebookPath string `json:"notebook_path"`
	WarehouseId  string `json:"warehouse_id,omitempty"`
	Source       string `json:"source,omitempty"`
}

type createJobResponse struct {
	JobId int64 `json:"job_id"`
}

// EnsureExportJob returns the id of the named export job, creating the job
// when no job with that name exists yet. Multiple matches use the first.
func (c *Client) EnsureExportJob(name string) (int64, error) {
	ids, err := c.ListJobsByName(name)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 { // if the job already exists...
		return ids[0], nil
	}
	c.log.Info("export job ", name, " not found, creating it")
	spec := &exportJobSpec{
		Name:    name,
		MaxRuns: 5,
		Parameters: []exportJobParameter{
			{Name: "export_sql", Default: "select 1"},
			{Name: "run_id", Default: ""},
		},
		Tasks: []exportJobTask{
			{
				TaskKey: "export",
				NotebookTask: exportNotebookTask{
					NotebookPath: exportNotebookPath,
					WarehouseId:  c.warehouseId(),
					Source:       "WORKSPACE",
				},
			},
		},
	}
	resp := &createJobResponse{}
	if err := c.post("create job", "/api/2.1/jobs/create", spec, resp); err != nil {
		return 0, errors.Wrapf(err, "unable to create export job %v", name)
	}
	return resp.JobId, nil
}
