package orchestrator

import (
	"strings"
	"testing"
	"time"
)

func newTestStore(start time.Time) (*MemoryStore, *time.Time) {
	s := NewMemoryStore()
	now := start
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStoreGetRunReturnsCopies(t *testing.T) {
	s, _ := newTestStore(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.CreateRun(SyncRun{Id: "a", Status: StatusPending})
	got, ok := s.GetRun("a")
	if !ok {
		t.Fatal("expected run to exist")
	}
	got.Status = StatusFailed
	got.Logs = append(got.Logs, "mutated")
	again, _ := s.GetRun("a")
	if again.Status != StatusPending || len(again.Logs) != 0 {
		t.Fatal("stored run was mutated through a copy: ", again)
	}
}

func TestStoreListRunsNewestFirst(t *testing.T) {
	s, now := newTestStore(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.CreateRun(SyncRun{Id: "first", Status: StatusPending})
	*now = now.Add(time.Minute)
	s.CreateRun(SyncRun{Id: "second", Status: StatusPending})
	*now = now.Add(time.Minute)
	s.CreateRun(SyncRun{Id: "third", Status: StatusPending})
	runs := s.ListRuns()
	if len(runs) != 3 {
		t.Fatal("expected 3 runs, got ", len(runs))
	}
	if runs[0].Id != "third" || runs[1].Id != "second" || runs[2].Id != "first" {
		t.Fatal("unexpected order: ", runs[0].Id, runs[1].Id, runs[2].Id)
	}
}

func TestStoreCompletedAtSetOnTerminalOnly(t *testing.T) {
	s, now := newTestStore(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.CreateRun(SyncRun{Id: "a", Status: StatusPending})
	s.UpdateStatus("a", StatusExporting)
	run, _ := s.GetRun("a")
	if run.CompletedAt != nil {
		t.Fatal("CompletedAt set on non-terminal status")
	}
	finished := now.Add(time.Hour)
	*now = finished
	s.UpdateStatus("a", StatusCompleted)
	run, _ = s.GetRun("a")
	if run.CompletedAt == nil || !run.CompletedAt.Equal(finished) {
		t.Fatal("CompletedAt not stamped on terminal transition: ", run.CompletedAt)
	}
	// A second terminal update must not move the stamp.
	*now = now.Add(time.Hour)
	s.UpdateStatus("a", StatusFailed)
	run, _ = s.GetRun("a")
	if !run.CompletedAt.Equal(finished) {
		t.Fatal("CompletedAt moved on repeated terminal update")
	}
}

func TestStoreUnknownIdsAreNoOps(t *testing.T) {
	s, _ := newTestStore(time.Now())
	s.UpdateStatus("missing", StatusFailed)
	s.SetDatabricksRunId("missing", 99)
	s.AddLog("missing", "hello")
	if _, ok := s.GetRun("missing"); ok {
		t.Fatal("mutations must not create runs")
	}
	if len(s.ListRuns()) != 0 {
		t.Fatal("expected empty store")
	}
}

func TestStoreAddLogTimestamps(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	s, _ := newTestStore(at)
	s.CreateRun(SyncRun{Id: "a", Status: StatusPending})
	s.AddLog("a", "Received sync request")
	run, _ := s.GetRun("a")
	if len(run.Logs) != 1 {
		t.Fatal("expected one log line")
	}
	if !strings.HasPrefix(run.Logs[0], "[2024-05-01T12:30:00Z] ") ||
		!strings.HasSuffix(run.Logs[0], "Received sync request") {
		t.Fatal("unexpected log line: ", run.Logs[0])
	}
}
