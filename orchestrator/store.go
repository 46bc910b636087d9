package orchestrator

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status values a sync run moves through. COMPLETED and FAILED are terminal.
const (
	StatusPending   = "PENDING"
	StatusExporting = "EXPORTING"
	StatusImporting = "IMPORTING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

func statusIsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// SyncRun is one end-to-end sync from a Databricks query to a Snowflake table.
type SyncRun struct {
	Id              string     `json:"id"`
	Sql             string     `json:"sql"`
	SourceTable     string     `json:"sourceTable,omitempty"`
	Status          string     `json:"status"`
	DatabricksRunId int64      `json:"databricksRunId,omitempty"`
	Logs            []string   `json:"logs"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// Store tracks sync runs. Mutations on unknown run ids are silent no-ops so a
// racing status update never panics the pipeline.
type Store interface {
	CreateRun(run SyncRun)
	GetRun(id string) (SyncRun, bool)
	ListRuns() []SyncRun
	UpdateStatus(id string, status string)
	SetDatabricksRunId(id string, databricksRunId int64)
	AddLog(id string, message string)
}

// MemoryStore is the in-memory Store used by the service. State does not
// survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*SyncRun
	now  func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*SyncRun), now: time.Now}
}

func (s *MemoryStore) CreateRun(run SyncRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	if run.Logs == nil {
		run.Logs = []string{}
	}
	s.runs[run.Id] = &run
}

// GetRun returns a copy so callers can never mutate stored state.
func (s *MemoryStore) GetRun(id string) (SyncRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return SyncRun{}, false
	}
	return copyRun(run), true
}

// ListRuns returns copies of all runs, newest created first.
func (s *MemoryStore) ListRuns() []SyncRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	retval := make([]SyncRun, 0, len(s.runs))
	for _, run := range s.runs {
		retval = append(retval, copyRun(run))
	}
	sort.Slice(retval, func(i, j int) bool {
		return retval[i].CreatedAt.After(retval[j].CreatedAt)
	})
	return retval
}

// UpdateStatus moves a run to the given status. Reaching a terminal status
// stamps CompletedAt exactly once.
func (s *MemoryStore) UpdateStatus(id string, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return
	}
	run.Status = status
	if statusIsTerminal(status) && run.CompletedAt == nil { // if the run just finished...
		t := s.now()
		run.CompletedAt = &t
	}
}

func (s *MemoryStore) SetDatabricksRunId(id string, databricksRunId int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.DatabricksRunId = databricksRunId
	}
}

// AddLog appends a timestamped log line to the run.
func (s *MemoryStore) AddLog(id string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Logs = append(run.Logs, fmt.Sprintf("[%v] %v", s.now().UTC().Format(time.RFC3339), message))
	}
}

func copyRun(run *SyncRun) SyncRun {
	retval := *run
	retval.Logs = append([]string{}, run.Logs...)
	if run.CompletedAt != nil {
		t := *run.CompletedAt
		retval.CompletedAt = &t
	}
	return retval
}
