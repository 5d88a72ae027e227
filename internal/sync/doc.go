// Package sync implements the offline action queue's synchronization
// engine: the scheduler that drains pending actions to the server, the
// retry state machine, and the facade the rest of the app calls to do
// offline-capable work.
//
// # Architecture
//
// The engine sits between the form UI (producer) and the inspections API
// (consumer):
//
//	Form completion
//	     │  CompleteInspectionOffline()
//	     ▼
//	Snapshot cache ◄── optimistic rewrite
//	Action queue   ◄── durable append (SQLite)
//	     │
//	     │  SyncPendingActions()   (connectivity trigger or manual)
//	     ▼
//	Scheduler ── one action at a time ──► api.Client ──► server
//
// # State machine
//
// Each queued action moves through:
//
//	pending → syncing → completed → removed (after grace period)
//	                  ↘ pending   (retryable failure, budget left)
//	                  ↘ failed    (budget exhausted, or permanent rejection)
//	failed  → pending (operator retry, budget reset)
//
// Failed actions are not eligible for automatic cycles; they wait for an
// explicit RetryFailedActions call. Mid-cycle enqueues wait for the next
// cycle: the eligible set is fixed when the cycle starts.
//
// # Concurrency
//
// At most one sync cycle runs at a time. The single-flight guard is a
// mutex-protected flag checked and set atomically; a second
// SyncPendingActions call while one is running returns immediately with no
// network calls. All other mutations serialize through the queue's own
// lock. Remote calls carry their own timeout; the scheduler never cancels
// an in-flight call, and context cancellation takes effect between actions
// only.
package sync
