package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cxtrack/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeExecutor returns canned rows per data source with an optional delay
// per call, and counts executions.
type fakeExecutor struct {
	mu     sync.Mutex
	delays map[string]time.Duration
	errFor string
	calls  int32
}

func (f *fakeExecutor) Execute(ctx context.Context, orgID primitive.ObjectID, cfg report.ReportConfig) ([]Row, error) {
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	delay := f.delays[cfg.DataSource]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	if cfg.DataSource == f.errFor {
		return nil, errors.New("boom")
	}
	return []Row{{"source": cfg.DataSource}}, nil
}

func (f *fakeExecutor) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func waitLoaded(t *testing.T, p *Previewer) []Row {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rows, _, loaded := p.Snapshot()
		if loaded {
			return rows
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("preview never loaded")
	return nil
}

func TestEditDebouncesToOneExecution(t *testing.T) {
	exec := &fakeExecutor{}
	p := NewPreviewer(exec, 50*time.Millisecond)
	orgID := primitive.NewObjectID()

	// A burst of edits inside the window coalesces into a single run with
	// the final configuration.
	for _, src := range []string{"customers", "invoices", "tasks"} {
		p.Edit(orgID, report.ReportConfig{DataSource: src})
		time.Sleep(10 * time.Millisecond)
	}

	rows := waitLoaded(t, p)
	if got := exec.callCount(); got != 1 {
		t.Errorf("executions = %d, want 1", got)
	}
	if rows[0]["source"] != "tasks" {
		t.Errorf("executed config = %v, want the last edit", rows[0])
	}
}

func TestSnapshotBeforeFirstLoad(t *testing.T) {
	p := NewPreviewer(&fakeExecutor{}, 50*time.Millisecond)

	rows, errMsg, loaded := p.Snapshot()
	if loaded {
		t.Error("loaded before any execution")
	}
	if len(rows) != 0 || errMsg != "" {
		t.Errorf("rows = %v, err = %q", rows, errMsg)
	}
}

func TestPreviewFiresImmediately(t *testing.T) {
	exec := &fakeExecutor{}
	p := NewPreviewer(exec, time.Hour) // debounce must not matter
	orgID := primitive.NewObjectID()

	p.Preview(orgID, report.ReportConfig{DataSource: "invoices"})

	rows := waitLoaded(t, p)
	if rows[0]["source"] != "invoices" {
		t.Errorf("rows = %v", rows)
	}
}

func TestStaleCompletionDiscarded(t *testing.T) {
	exec := &fakeExecutor{delays: map[string]time.Duration{
		"slow": 150 * time.Millisecond,
	}}
	p := NewPreviewer(exec, time.Hour)
	orgID := primitive.NewObjectID()

	// The first request is slow; the second starts later and finishes first.
	p.Preview(orgID, report.ReportConfig{DataSource: "slow"})
	time.Sleep(20 * time.Millisecond)
	p.Preview(orgID, report.ReportConfig{DataSource: "fast"})

	rows := waitLoaded(t, p)
	if rows[0]["source"] != "fast" {
		t.Fatalf("rows = %v, want the newer request", rows)
	}

	// Let the slow completion arrive, then confirm it was discarded.
	time.Sleep(200 * time.Millisecond)
	rows, _, _ = p.Snapshot()
	if rows[0]["source"] != "fast" {
		t.Errorf("stale completion overwrote newer result: %v", rows)
	}
}

func TestFailedExecutionYieldsEmptyRowsAndError(t *testing.T) {
	exec := &fakeExecutor{errFor: "invoices"}
	p := NewPreviewer(exec, time.Hour)
	orgID := primitive.NewObjectID()

	p.Preview(orgID, report.ReportConfig{DataSource: "invoices"})
	waitLoaded(t, p)

	rows, errMsg, loaded := p.Snapshot()
	if !loaded {
		t.Fatal("not loaded")
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want empty on failure", rows)
	}
	if errMsg != "boom" {
		t.Errorf("error = %q", errMsg)
	}

	// A following success clears the error.
	p.Preview(orgID, report.ReportConfig{DataSource: "tasks"})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rows, errMsg, _ = p.Snapshot()
		if errMsg == "" && len(rows) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("error not cleared: rows = %v, err = %q", rows, errMsg)
}

func TestStopDisarmsPendingEdit(t *testing.T) {
	exec := &fakeExecutor{}
	p := NewPreviewer(exec, 30*time.Millisecond)
	orgID := primitive.NewObjectID()

	p.Edit(orgID, report.ReportConfig{DataSource: "customers"})
	p.Stop()
	time.Sleep(80 * time.Millisecond)

	if got := exec.callCount(); got != 0 {
		t.Errorf("executions after Stop = %d, want 0", got)
	}
}

func TestSessionManagerReusesPerKey(t *testing.T) {
	m := NewSessionManager(&fakeExecutor{}, 50*time.Millisecond)

	a := m.Session("user-a")
	if m.Session("user-a") != a {
		t.Error("same key returned a different previewer")
	}
	if m.Session("user-b") == a {
		t.Error("different keys share a previewer")
	}
}
