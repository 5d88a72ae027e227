package sync

import (
	"context"

	"github.com/safetycheck/fieldsync/internal/action"
	"github.com/safetycheck/fieldsync/internal/snapshot"
	"github.com/safetycheck/fieldsync/internal/status"
)

// Syncer is the engine surface consumed by the daemon and the CLI.
type Syncer interface {
	// SyncPendingActions drains the eligible queue against the server.
	// It is a no-op when offline or when a cycle is already running.
	// The returned error reflects scheduler-level problems only;
	// per-action failures feed the retry state machine instead.
	SyncPendingActions(ctx context.Context) error

	// CompleteInspectionOffline records a completed inspection: it
	// enqueues exactly one inspection_complete action and optimistically
	// updates the cached snapshot. Works identically online and offline.
	// Returns the queued action's ID.
	CompleteInspectionOffline(workOrderID, inspectionID string, result snapshot.InspectionResult, photos []action.PhotoRef, signatures []action.SignatureRef) (string, error)

	// EnqueueAction queues an arbitrary offline mutation.
	// Returns the queued action's ID.
	EnqueueAction(typ action.Type, payload any) (string, error)

	// RetryFailedActions resets every failed action to pending with a
	// fresh retry budget and, when online, starts a cycle.
	// Returns the number of actions reset.
	RetryFailedActions(ctx context.Context) int

	// DownloadForOffline replaces the cached snapshot with freshly
	// fetched server data.
	DownloadForOffline(snap snapshot.Snapshot) error

	// ClearOfflineData drops the snapshot, the queue, and the last-sync
	// marker. Used on logout.
	ClearOfflineData() error

	// Status returns the current derived sync status.
	Status() status.SyncStatus

	// Subscribe registers fn to receive the recomputed status after
	// every queue or cycle change.
	Subscribe(fn func(status.SyncStatus))

	// Close tears the engine down. Pending grace-period removals are
	// abandoned; the queue keeps its persisted state.
	Close()
}
