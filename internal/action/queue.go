package action

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/safetycheck/fieldsync/internal/store"
)

// Queue is the ordered collection of pending actions, persisted through the
// store after every mutation. Enqueue always appends to the tail; the
// scheduler drains in queue order.
//
// Persistence failures are logged and the queue keeps operating from
// memory. Losing durability degrades a crash, not the session.
type Queue struct {
	mu      sync.Mutex
	actions []Action
	st      store.Store
	logger  *log.Logger
}

// NewQueue creates a queue bound to st and loads any persisted actions.
//
// Actions that were mid-sync when the process died are returned to pending:
// the attempt outcome was never recorded, so the action must be retried.
//
// If logger is nil, a default logger writing to stderr is used.
func NewQueue(st store.Store, logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.New(os.Stderr, "[queue] ", log.LstdFlags)
	}

	q := &Queue{st: st, logger: logger}
	q.load()
	return q
}

func (q *Queue) load() {
	raw, ok, err := q.st.Get(store.KeyPendingActions)
	if err != nil {
		q.logger.Printf("Failed to load pending actions: %v", err)
		return
	}
	if !ok {
		return
	}

	var actions []Action
	if err := json.Unmarshal(raw, &actions); err != nil {
		q.logger.Printf("Failed to decode pending actions: %v", err)
		return
	}

	// Recover state left by a dead process: a mid-sync action never had
	// its outcome recorded and must retry; a completed one was already
	// acknowledged and its grace period has long elapsed.
	kept := actions[:0]
	for _, a := range actions {
		switch a.Status {
		case StatusSyncing:
			a.Status = StatusPending
			kept = append(kept, a)
		case StatusCompleted:
			// drop
		default:
			kept = append(kept, a)
		}
	}

	q.actions = kept
}

// Enqueue appends a to the tail of the queue and persists.
func (q *Queue) Enqueue(a *Action) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.actions = append(q.actions, *a)
	q.persistLocked()
}

// Get returns a copy of the action with the given id.
func (q *Queue) Get(id string) (Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.actions {
		if q.actions[i].ID == id {
			return q.actions[i], true
		}
	}
	return Action{}, false
}

// SetStatus transitions the action to status and persists.
func (q *Queue) SetStatus(id string, status Status) error {
	return q.update(id, func(a *Action) {
		a.Status = status
	})
}

// RecordFailure increments the retry counter and moves the action back to
// pending, or to failed once the budget is exhausted. Returns the resulting
// status.
func (q *Queue) RecordFailure(id string) (Status, error) {
	var result Status
	err := q.update(id, func(a *Action) {
		a.RetryCount++
		if a.RetryCount >= a.MaxRetries {
			a.Status = StatusFailed
		} else {
			a.Status = StatusPending
		}
		result = a.Status
	})
	return result, err
}

// MarkPermanentFailure moves the action straight to failed without
// consuming retry budget. Used for server rejections that retrying cannot
// fix.
func (q *Queue) MarkPermanentFailure(id string) error {
	return q.update(id, func(a *Action) {
		a.Status = StatusFailed
	})
}

// ResetFailed returns every failed action to pending with a fresh retry
// budget. This is the operator retry-all entry point. Returns the number of
// actions reset.
func (q *Queue) ResetFailed() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for i := range q.actions {
		if q.actions[i].Status == StatusFailed {
			q.actions[i].Status = StatusPending
			q.actions[i].RetryCount = 0
			n++
		}
	}
	if n > 0 {
		q.persistLocked()
	}
	return n
}

// Remove deletes the action with the given id and persists.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.actions {
		if q.actions[i].ID == id {
			q.actions = append(q.actions[:i], q.actions[i+1:]...)
			q.persistLocked()
			return
		}
	}
}

// List returns a copy of all actions in queue order.
func (q *Queue) List() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Action, len(q.actions))
	copy(out, q.actions)
	return out
}

// PendingIDs returns, in queue order, the IDs of actions eligible for a
// sync cycle. Failed actions are excluded: they need an explicit operator
// reset before becoming eligible again.
func (q *Queue) PendingIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ids []string
	for i := range q.actions {
		if q.actions[i].Status == StatusPending {
			ids = append(ids, q.actions[i].ID)
		}
	}
	return ids
}

// CountByStatus returns the number of actions per status.
func (q *Queue) CountByStatus() map[Status]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := make(map[Status]int)
	for i := range q.actions {
		counts[q.actions[i].Status]++
	}
	return counts
}

// Len returns the total number of queued actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Clear removes all actions from memory and the store.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.actions = nil
	return q.st.Delete(store.KeyPendingActions)
}

func (q *Queue) update(id string, fn func(*Action)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.actions {
		if q.actions[i].ID == id {
			fn(&q.actions[i])
			q.persistLocked()
			return nil
		}
	}
	return fmt.Errorf("action not found: %s", id)
}

// persistLocked writes the full queue to the store. Caller holds mu.
func (q *Queue) persistLocked() {
	raw, err := json.Marshal(q.actions)
	if err != nil {
		q.logger.Printf("Failed to encode pending actions: %v", err)
		return
	}
	if err := q.st.Set(store.KeyPendingActions, raw); err != nil {
		q.logger.Printf("Failed to persist pending actions: %v", err)
	}
}
