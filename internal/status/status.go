// Package status derives the observable sync state from the queue, the
// connectivity monitor, and the store. The reporter holds no state of its
// own; every read recomputes from the sources.
package status

import (
	"log"
	"os"
	"time"

	"github.com/safetycheck/fieldsync/internal/action"
	"github.com/safetycheck/fieldsync/internal/store"
)

// SyncStatus is the read-only status surface consumed by UIs.
type SyncStatus struct {
	IsOnline       bool       `json:"isOnline"`
	IsSyncing      bool       `json:"isSyncing"`
	LastSync       *time.Time `json:"lastSync"`
	PendingActions int        `json:"pendingActions"`
	FailedActions  int        `json:"failedActions"`
	SyncProgress   int        `json:"syncProgress"` // 0-100
}

// QueueCounter exposes the queue's per-status counts.
type QueueCounter interface {
	CountByStatus() map[action.Status]int
}

// Connectivity exposes current reachability.
type Connectivity interface {
	Online() bool
}

// CycleState exposes the scheduler's in-flight state.
type CycleState interface {
	Syncing() bool
	Progress() int
}

// Reporter derives SyncStatus on demand.
type Reporter struct {
	queue  QueueCounter
	conn   Connectivity
	cycle  CycleState
	st     store.Store
	logger *log.Logger
}

// NewReporter creates a reporter over the given sources.
// If logger is nil, a default logger writing to stderr is used.
func NewReporter(queue QueueCounter, conn Connectivity, cycle CycleState, st store.Store, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.New(os.Stderr, "[status] ", log.LstdFlags)
	}
	return &Reporter{queue: queue, conn: conn, cycle: cycle, st: st, logger: logger}
}

// Status recomputes the full status surface.
func (r *Reporter) Status() SyncStatus {
	counts := r.queue.CountByStatus()

	return SyncStatus{
		IsOnline:       r.conn.Online(),
		IsSyncing:      r.cycle.Syncing(),
		LastSync:       r.lastSync(),
		PendingActions: counts[action.StatusPending],
		FailedActions:  counts[action.StatusFailed],
		SyncProgress:   r.cycle.Progress(),
	}
}

// lastSync reads the persisted last-sync timestamp. An unreadable or
// unparseable value is treated as never synced.
func (r *Reporter) lastSync() *time.Time {
	raw, ok, err := r.st.Get(store.KeyLastSync)
	if err != nil {
		r.logger.Printf("Failed to read last sync: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	ts, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		r.logger.Printf("Failed to parse last sync %q: %v", raw, err)
		return nil
	}
	return &ts
}
