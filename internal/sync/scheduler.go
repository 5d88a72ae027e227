package sync

import (
	"context"
	"time"

	"github.com/safetycheck/fieldsync/internal/action"
	"github.com/safetycheck/fieldsync/internal/api"
	"github.com/safetycheck/fieldsync/internal/store"
)

// SyncPendingActions implements Syncer.SyncPendingActions.
//
// The eligible set (pending actions, in FIFO order) is fixed at cycle
// start; actions enqueued while the cycle runs wait for the next one.
// Failures of one action never abort the batch.
func (e *Engine) SyncPendingActions(ctx context.Context) error {
	if !e.conn.Online() {
		return nil
	}

	// Single-flight: check and set under one lock acquisition.
	e.mu.Lock()
	if e.syncing || e.closed {
		e.mu.Unlock()
		return nil
	}
	ids := e.queue.PendingIDs()
	if len(ids) == 0 {
		e.mu.Unlock()
		return nil
	}
	e.syncing = true
	e.progress = 0
	e.mu.Unlock()

	e.config.Logger.Printf("Sync cycle starting: %d action(s)", len(ids))
	e.notify()

	total := len(ids)
	for i, id := range ids {
		a, ok := e.queue.Get(id)
		if !ok || a.Status != action.StatusPending {
			// Removed or reset since the cycle started.
			continue
		}

		if err := e.queue.SetStatus(id, action.StatusSyncing); err != nil {
			e.config.Logger.Printf("Failed to mark %s syncing: %v", id, err)
			continue
		}
		e.notify()

		outcome := e.dispatch(ctx, a)
		switch outcome.Disposition {
		case api.DispositionOK:
			if err := e.queue.SetStatus(id, action.StatusCompleted); err != nil {
				e.config.Logger.Printf("Failed to mark %s completed: %v", id, err)
				break
			}
			e.config.Logger.Printf("Synced %s (%s)", a.Type, id)
			e.scheduleRemoval(id)

		case api.DispositionPermanent:
			if err := e.queue.MarkPermanentFailure(id); err != nil {
				e.config.Logger.Printf("Failed to mark %s failed: %v", id, err)
				break
			}
			e.config.Logger.Printf("Rejected %s (%s): %v", a.Type, id, outcome.Err)

		default:
			st, err := e.queue.RecordFailure(id)
			if err != nil {
				e.config.Logger.Printf("Failed to record failure for %s: %v", id, err)
				break
			}
			if st == action.StatusFailed {
				e.config.Logger.Printf("Exhausted retries for %s (%s): %v", a.Type, id, outcome.Err)
			} else {
				e.config.Logger.Printf("Will retry %s (%s): %v", a.Type, id, outcome.Err)
			}
		}

		e.setProgress((i + 1) * 100 / total)
		e.notify()

		// Cancellation takes effect between actions only.
		if ctx.Err() != nil {
			e.config.Logger.Printf("Sync cycle interrupted: %v", ctx.Err())
			break
		}
	}

	now := time.Now().UTC()
	if err := e.st.Set(store.KeyLastSync, []byte(now.Format(time.RFC3339))); err != nil {
		e.config.Logger.Printf("Failed to persist last sync: %v", err)
	}

	e.mu.Lock()
	e.syncing = false
	e.progress = 100
	e.mu.Unlock()

	e.config.Logger.Println("Sync cycle complete")
	e.notify()
	e.scheduleProgressReset()
	return nil
}

// dispatch routes an action to the remote call for its type.
func (e *Engine) dispatch(ctx context.Context, a action.Action) api.Outcome {
	switch a.Type {
	case action.TypeInspectionComplete:
		return e.client.CompleteInspection(ctx, a.Payload)
	case action.TypeInspectionUpdate:
		return e.client.UpdateInspection(ctx, a.Payload)
	case action.TypePhotoUpload:
		return e.client.UploadPhoto(ctx, a.Payload)
	case action.TypeSignatureUpload:
		return e.client.UploadSignature(ctx, a.Payload)
	default:
		// Unknown types can only come from a corrupted queue blob.
		return api.Permanent(nil)
	}
}

// scheduleRemoval removes a completed action after the grace period so the
// UI can render its terminal state first.
func (e *Engine) scheduleRemoval(id string) {
	time.AfterFunc(e.config.GracePeriod, func() {
		e.mu.Lock()
		closed := e.closed
		e.mu.Unlock()
		if closed {
			return
		}

		e.queue.Remove(id)
		e.notify()
	})
}

// scheduleProgressReset clears the lingering 100% after a display delay,
// unless another cycle has started.
func (e *Engine) scheduleProgressReset() {
	time.AfterFunc(e.config.ProgressResetDelay, func() {
		e.mu.Lock()
		if e.closed || e.syncing {
			e.mu.Unlock()
			return
		}
		e.progress = 0
		e.mu.Unlock()
		e.notify()
	})
}

func (e *Engine) setProgress(p int) {
	e.mu.Lock()
	e.progress = p
	e.mu.Unlock()
}
