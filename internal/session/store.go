// Package session holds the current interactive session: the latest scan
// inventory and the latest analysis. There is no persistence; each scan
// replaces the previous session state wholesale.
package session

import (
	"sync"
	"time"

	"github.com/jyothiv-codes/HackSprint/internal/scan"
)

// State is an immutable snapshot of the session.
type State struct {
	Tabs           []scan.TabRecord
	ReachablePorts []int
	FetchedAt      time.Time
	Task           string
	Analysis       string
	AnalyzedAt     time.Time
}

// HasScan reports whether a scan has completed this session.
func (s State) HasScan() bool { return !s.FetchedAt.IsZero() }

// HasAnalysis reports whether an analysis result is held.
func (s State) HasAnalysis() bool { return s.Analysis != "" }

// Store is a concurrency-safe holder for the session state.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{}
}

// SetScan replaces the entire session with a fresh scan outcome. Any prior
// analysis belonged to the old inventory and is discarded with it.
func (st *Store) SetScan(outcome scan.Outcome) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = State{
		Tabs:           outcome.Records,
		ReachablePorts: outcome.ReachablePorts,
		FetchedAt:      outcome.FetchedAt,
	}
}

// SetAnalysis records the result of one analysis over the current scan,
// replacing any prior result.
func (st *Store) SetAnalysis(task, analysis string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.Task = task
	st.state.Analysis = analysis
	st.state.AnalyzedAt = time.Now().UTC()
}

// Snapshot returns a copy of the current state. Slices are copied so the
// caller can hold the snapshot across later mutations.
func (st *Store) Snapshot() State {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := st.state
	out.Tabs = append([]scan.TabRecord(nil), st.state.Tabs...)
	out.ReachablePorts = append([]int(nil), st.state.ReachablePorts...)
	return out
}
