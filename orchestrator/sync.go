package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bricklake/bricksync/databricks"
	"github.com/bricklake/bricksync/logger"
	"github.com/bricklake/bricksync/snowflake"
)

// QueryGateway is the slice of the Databricks client the pipeline uses to
// inspect the source data set.
type QueryGateway interface {
	CountRowsForQuery(sql string) (int64, error)
	DescribeTableColumns(table string) ([]databricks.Column, error)
	InferColumnsFromQuery(sql string) ([]databricks.Column, error)
}

// JobGateway drives the Databricks export job.
type JobGateway interface {
	EnsureExportJob(name string) (int64, error)
	TriggerJobRun(jobId int64, params map[string]string, idempotencyToken string) (*databricks.JobRunResult, error)
	GetRunStatus(runId int64) (*databricks.RunStatus, error)
	GetRunOutput(runId int64) (*databricks.RunOutput, error)
}

// Loader moves one exported run into Snowflake.
type Loader interface {
	LoadExportedRun(runId string, columns []databricks.Column) (*snowflake.LoadResult, error)
}

// SyncRequest starts one sync. SourceTable is optional; when set, column
// types come from DESCRIBE TABLE rather than a LIMIT 0 probe of the query.
type SyncRequest struct {
	Sql         string `json:"sql"`
	SourceTable string `json:"sourceTable,omitempty"`
}

// SyncConfig wires a SyncService.
type SyncConfig struct {
	Log            logger.Logger
	Store          Store
	Queries        QueryGateway
	Jobs           JobGateway
	Loader         Loader
	ExportBasePath string
	ExportJobName  string
	PollInterval   time.Duration
	PollTimeout    time.Duration
	Now            func() time.Time    // defaults to time.Now
	Sleep          func(time.Duration) // defaults to time.Sleep
}

// SyncService runs the export-then-import pipeline for each accepted request.
// Start returns immediately; progress is observable through the Store.
type SyncService struct {
	cfg SyncConfig
}

// NewSyncService validates the wiring and returns a SyncService.
func NewSyncService(cfg SyncConfig) (*SyncService, error) {
	if cfg.Log == nil || cfg.Store == nil || cfg.Queries == nil || cfg.Jobs == nil || cfg.Loader == nil {
		return nil, errors.New("sync service requires a logger, store, query gateway, job gateway and loader")
	}
	if cfg.ExportBasePath == "" || cfg.ExportJobName == "" {
		return nil, errors.New("sync service requires an export base path and job name")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 20 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &SyncService{cfg: cfg}, nil
}

// Start validates the request, records a PENDING run and kicks off the
// pipeline goroutine. The returned run id is usable immediately.
func (s *SyncService) Start(req SyncRequest) (string, error) {
	if strings.TrimSpace(req.Sql) == "" {
		return "", errors.New("sql is required")
	}
	runId := uuid.New().String()
	s.cfg.Store.CreateRun(SyncRun{
		Id:          runId,
		Sql:         req.Sql,
		SourceTable: req.SourceTable,
		Status:      StatusPending,
		CreatedAt:   s.cfg.Now(),
	})
	s.cfg.Store.AddLog(runId, "Received sync request")
	go s.runPipeline(runId, req)
	return runId, nil
}

// GetRun returns one run from the store.
func (s *SyncService) GetRun(id string) (SyncRun, bool) {
	return s.cfg.Store.GetRun(id)
}

// ListRuns returns all runs, newest first.
func (s *SyncService) ListRuns() []SyncRun {
	return s.cfg.Store.ListRuns()
}

// runPipeline drives one run to a terminal status. Nothing escapes this
// goroutine: errors and panics both land the run in FAILED with the cause as
// the closing log line.
func (s *SyncService) runPipeline(runId string, req SyncRequest) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Log.Error("sync run ", runId, " panicked: ", r)
			s.fail(runId, fmt.Sprintf("internal error: %v", r))
		}
	}()
	if err := s.exportAndLoad(runId, req); err != nil {
		s.cfg.Log.Error("sync run ", runId, " failed: ", err)
		s.fail(runId, err.Error())
	}
}

func (s *SyncService) fail(runId string, message string) {
	s.cfg.Store.AddLog(runId, message)
	s.cfg.Store.UpdateStatus(runId, StatusFailed)
}

func (s *SyncService) exportAndLoad(runId string, req SyncRequest) error {
	store := s.cfg.Store
	store.UpdateStatus(runId, StatusExporting)
	store.AddLog(runId, "Exporting query results to S3")

	// The expected count is advisory. A failure here must not stop the run.
	expected := int64(-1)
	if n, err := s.cfg.Queries.CountRowsForQuery(req.Sql); err != nil {
		s.cfg.Log.Warn("sync run ", runId, ": unable to count source rows: ", err)
	} else {
		expected = n
	}
	store.AddLog(runId, fmt.Sprintf("Expecting %v rows", expected))

	jobId, err := s.cfg.Jobs.EnsureExportJob(s.cfg.ExportJobName)
	if err != nil {
		return errors.Wrap(err, "unable to resolve export job")
	}
	params := map[string]string{
		"export_sql": buildExportSql(s.cfg.ExportBasePath, runId, req.Sql),
		"run_id":     runId,
	}
	run, err := s.cfg.Jobs.TriggerJobRun(jobId, params, runId)
	if err != nil {
		return errors.Wrap(err, "unable to start export job run")
	}
	store.SetDatabricksRunId(runId, run.RunId)
	store.AddLog(runId, fmt.Sprintf("Started Databricks job run %v", run.RunId))

	status, err := s.waitForRun(runId, run.RunId)
	if err != nil {
		return err
	}
	if status.State.ResultState != databricks.ResultStateSuccess {
		return errors.New(s.describeFailure(runId, status))
	}
	store.AddLog(runId, "Export job completed")

	columns, err := s.resolveColumns(req)
	if err != nil {
		return errors.Wrap(err, "unable to resolve result columns")
	}

	store.UpdateStatus(runId, StatusImporting)
	store.AddLog(runId, "Loading exported data into Snowflake")
	result, err := s.cfg.Loader.LoadExportedRun(runId, columns)
	if err != nil {
		return errors.Wrap(err, "unable to load data into Snowflake")
	}
	store.AddLog(runId, fmt.Sprintf("Loaded %v rows from %v staged files", result.RowsLoaded, result.StageFilesCount))
	if expected >= 0 && result.RowsLoaded != expected { // advisory only...
		store.AddLog(runId, fmt.Sprintf("Row count mismatch: expected %v, loaded %v", expected, result.RowsLoaded))
	}
	store.UpdateStatus(runId, StatusCompleted)
	return nil
}

// waitForRun polls the job run until it reaches a terminal life-cycle state
// or the wall-clock ceiling passes.
func (s *SyncService) waitForRun(runId string, databricksRunId int64) (*databricks.RunStatus, error) {
	deadline := s.cfg.Now().Add(s.cfg.PollTimeout)
	for {
		status, err := s.cfg.Jobs.GetRunStatus(databricksRunId)
		if err != nil {
			return nil, errors.Wrap(err, "unable to poll export job run")
		}
		s.cfg.Store.AddLog(runId, fmt.Sprintf("Job run state: %v", status.State.LifeCycleState))
		if status.State.IsTerminal() {
			return status, nil
		}
		if !s.cfg.Now().Before(deadline) {
			return nil, errors.Errorf("export job run %v timed out after %v", databricksRunId, s.cfg.PollTimeout)
		}
		s.cfg.Sleep(s.cfg.PollInterval)
	}
}

// describeFailure builds the failure message for a job run that terminated
// without SUCCESS, pulling task diagnostics when they can be fetched.
func (s *SyncService) describeFailure(runId string, status *databricks.RunStatus) string {
	message := status.State.StateMessage
	if message == "" {
		message = fmt.Sprintf("export job run finished with result state %v", status.State.ResultState)
	}
	for _, task := range status.Tasks {
		if task.State.ResultState == databricks.ResultStateSuccess {
			continue
		}
		out, err := s.cfg.Jobs.GetRunOutput(task.RunId)
		if err != nil { // diagnostics are best effort...
			s.cfg.Log.Warn("sync run ", runId, ": unable to fetch output of task run ", task.RunId, ": ", err)
			continue
		}
		if text := out.Text(); text != "" {
			s.cfg.Store.AddLog(runId, fmt.Sprintf("Task %v output: %v", task.TaskKey, text))
		}
	}
	return message
}

// resolveColumns picks the column source: the declared table when given,
// otherwise a zero-row probe of the query itself.
func (s *SyncService) resolveColumns(req SyncRequest) ([]databricks.Column, error) {
	if req.SourceTable != "" {
		return s.cfg.Queries.DescribeTableColumns(req.SourceTable)
	}
	return s.cfg.Queries.InferColumnsFromQuery(req.Sql)
}

// buildExportSql wraps the user's query in the statement the export job runs
// to land parquet files under the run's partition.
func buildExportSql(basePath string, runId string, sql string) string {
	basePath = strings.TrimSuffix(basePath, "/")
	return fmt.Sprintf("INSERT OVERWRITE DIRECTORY '%v/run_id=%v' USING PARQUET %v",
		basePath, runId, strings.TrimSpace(sql))
}
