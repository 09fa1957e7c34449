package gateway

import (
	"context"
	"sync"
	"time"

	"cxtrack/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDebounce is how long configuration edits must settle before an
// auto-preview execution fires.
const DefaultDebounce = 800 * time.Millisecond

// Result is the tagged outcome of one execution. Err being non-empty means
// the request failed and Rows is empty; that is distinct from a successful
// run that matched nothing.
type Result struct {
	Rows  []Row  `json:"rows"`
	Err   string `json:"error,omitempty"`
	Token uint64 `json:"token"`
}

// Previewer owns the auto-preview lifecycle for one editing session:
// edits settle for the debounce window before one execution fires with the
// final configuration, a manual Preview fires immediately, and a monotonic
// request token discards stale completions so the visible result always
// corresponds to the most recently initiated request that has completed.
// In-flight requests are never cancelled, only discarded.
type Previewer struct {
	exec     Executor
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64 // last issued request token
	applied uint64 // token of the currently visible result
	orgID   primitive.ObjectID
	pending report.ReportConfig
	rows    []Row
	errMsg  string
	loaded  bool
}

func NewPreviewer(exec Executor, debounce time.Duration) *Previewer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Previewer{exec: exec, debounce: debounce}
}

// Edit records a configuration change and (re)arms the debounce window.
// Only the configuration present at the end of the window is executed;
// earlier partial edits never trigger a request.
func (p *Previewer) Edit(orgID primitive.ObjectID, cfg report.ReportConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.orgID = orgID
	p.pending = cfg

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		p.mu.Lock()
		orgID, cfg := p.orgID, p.pending
		token := p.issueLocked()
		p.mu.Unlock()
		p.run(token, orgID, cfg)
	})
}

// Preview fires immediately, superseding any pending debounce.
func (p *Previewer) Preview(orgID primitive.ObjectID, cfg report.ReportConfig) {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.orgID = orgID
	p.pending = cfg
	token := p.issueLocked()
	p.mu.Unlock()
	p.run(token, orgID, cfg)
}

// Snapshot returns the current visible result. loaded is false until the
// first execution completes, letting callers tell "not yet loaded" apart
// from "no rows matched" and "request failed".
func (p *Previewer) Snapshot() (rows []Row, errMsg string, loaded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows, p.errMsg, p.loaded
}

// LastConfig returns the most recently submitted configuration.
func (p *Previewer) LastConfig() report.ReportConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Stop disarms any pending debounce.
func (p *Previewer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Previewer) issueLocked() uint64 {
	p.seq++
	return p.seq
}

func (p *Previewer) run(token uint64, orgID primitive.ObjectID, cfg report.ReportConfig) {
	go func() {
		rows, err := p.exec.Execute(context.Background(), orgID, cfg)
		if rows == nil {
			rows = []Row{}
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		// Discard out-of-order completions: a slower, earlier-started
		// request must not overwrite a newer result.
		if token <= p.applied {
			return
		}
		p.applied = token
		p.loaded = true
		if err != nil {
			p.rows = []Row{}
			p.errMsg = err.Error()
			return
		}
		p.rows = rows
		p.errMsg = ""
	}()
}

// SessionManager hands out one Previewer per editing session.
type SessionManager struct {
	mu       sync.Mutex
	exec     Executor
	debounce time.Duration
	sessions map[string]*Previewer
}

func NewSessionManager(exec Executor, debounce time.Duration) *SessionManager {
	return &SessionManager{
		exec:     exec,
		debounce: debounce,
		sessions: make(map[string]*Previewer),
	}
}

// Session returns the previewer for a key (typically the user ID), creating
// it on first use.
func (m *SessionManager) Session(key string) *Previewer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.sessions[key]; ok {
		return p
	}
	p := NewPreviewer(m.exec, m.debounce)
	m.sessions[key] = p
	return p
}
