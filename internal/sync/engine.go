package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/safetycheck/fieldsync/internal/action"
	"github.com/safetycheck/fieldsync/internal/api"
	"github.com/safetycheck/fieldsync/internal/snapshot"
	"github.com/safetycheck/fieldsync/internal/status"
	"github.com/safetycheck/fieldsync/internal/store"
)

// Connectivity is the monitor surface the engine needs.
type Connectivity interface {
	Online() bool
}

// Config holds engine tunables.
type Config struct {
	// GracePeriod is how long a completed action stays visible in the
	// queue before removal, so the UI can render its terminal state.
	GracePeriod time.Duration

	// ProgressResetDelay is how long the 100% progress value is held
	// after a cycle before resetting to 0.
	ProgressResetDelay time.Duration

	// Logger for engine activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GracePeriod:        1 * time.Second,
		ProgressResetDelay: 2 * time.Second,
		Logger:             log.New(os.Stderr, "[sync] ", log.LstdFlags),
	}
}

// Engine owns the action queue, the snapshot cache, and the scheduler.
// Construct one per session and Close it on logout.
type Engine struct {
	st       store.Store
	queue    *action.Queue
	cache    *snapshot.Cache
	client   api.Client
	conn     Connectivity
	config   *Config
	reporter *status.Reporter

	mu       sync.Mutex
	syncing  bool
	progress int
	closed   bool

	listenerMu sync.Mutex
	listeners  []func(status.SyncStatus)
}

var _ Syncer = (*Engine)(nil)

// New creates an engine over the given collaborators.
// If config is nil, DefaultConfig() is used.
func New(st store.Store, queue *action.Queue, cache *snapshot.Cache, client api.Client, conn Connectivity, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}

	e := &Engine{
		st:     st,
		queue:  queue,
		cache:  cache,
		client: client,
		conn:   conn,
		config: config,
	}
	e.reporter = status.NewReporter(queue, conn, e, st, config.Logger)
	return e
}

// Syncing reports whether a cycle is in flight. Implements
// status.CycleState.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}

// Progress returns the current cycle progress, 0-100. Implements
// status.CycleState.
func (e *Engine) Progress() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Status implements Syncer.Status.
func (e *Engine) Status() status.SyncStatus {
	return e.reporter.Status()
}

// Subscribe implements Syncer.Subscribe.
func (e *Engine) Subscribe(fn func(status.SyncStatus)) {
	e.listenerMu.Lock()
	defer e.listenerMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Close implements Syncer.Close.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// CompleteInspectionOffline implements Syncer.CompleteInspectionOffline.
//
// The snapshot rewrite and the enqueue are independent: a work order
// missing from the snapshot is logged but never blocks queueing the
// result.
func (e *Engine) CompleteInspectionOffline(workOrderID, inspectionID string, result snapshot.InspectionResult, photos []action.PhotoRef, signatures []action.SignatureRef) (string, error) {
	completedAt := time.Now().UTC().Format(time.RFC3339)

	payload := action.CompletionPayload{
		WorkOrderID:  workOrderID,
		InspectionID: inspectionID,
		Result:       result,
		CompletedAt:  completedAt,
		Photos:       photos,
		Signatures:   signatures,
	}

	id, err := e.EnqueueAction(action.TypeInspectionComplete, payload)
	if err != nil {
		return "", err
	}

	if err := e.cache.ApplyCompletion(workOrderID, inspectionID, result, completedAt); err != nil {
		e.config.Logger.Printf("Optimistic update skipped: %v", err)
	}

	return id, nil
}

// EnqueueAction implements Syncer.EnqueueAction. The action lands at the
// queue tail; when online, a cycle is kicked off in the background.
func (e *Engine) EnqueueAction(typ action.Type, payload any) (string, error) {
	a, err := action.New(typ, payload)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue: %w", err)
	}

	e.queue.Enqueue(a)
	e.config.Logger.Printf("Enqueued %s (%s)", a.Type, a.ID)
	e.notify()

	if e.conn.Online() {
		go func() {
			if err := e.SyncPendingActions(context.Background()); err != nil {
				e.config.Logger.Printf("Background sync failed: %v", err)
			}
		}()
	}

	return a.ID, nil
}

// RetryFailedActions implements Syncer.RetryFailedActions.
func (e *Engine) RetryFailedActions(ctx context.Context) int {
	n := e.queue.ResetFailed()
	if n == 0 {
		return 0
	}

	e.config.Logger.Printf("Reset %d failed action(s) to pending", n)
	e.notify()

	if e.conn.Online() {
		if err := e.SyncPendingActions(ctx); err != nil {
			e.config.Logger.Printf("Retry sync failed: %v", err)
		}
	}
	return n
}

// DownloadForOffline implements Syncer.DownloadForOffline.
func (e *Engine) DownloadForOffline(snap snapshot.Snapshot) error {
	snap.LastSync = time.Now().UTC()
	if err := e.cache.Download(snap); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	e.config.Logger.Printf("Downloaded snapshot: %d work orders, %d templates",
		len(snap.WorkOrders), len(snap.Templates))
	e.notify()
	return nil
}

// ClearOfflineData implements Syncer.ClearOfflineData.
func (e *Engine) ClearOfflineData() error {
	if err := e.queue.Clear(); err != nil {
		return err
	}
	if err := e.cache.Clear(); err != nil {
		return err
	}
	if err := e.st.Delete(store.KeyLastSync); err != nil {
		return err
	}

	e.mu.Lock()
	e.progress = 0
	e.mu.Unlock()

	e.config.Logger.Println("Cleared offline data")
	e.notify()
	return nil
}

// StorageInfo reports the byte footprint of the persisted offline state.
type StorageInfo struct {
	SnapshotKB       int64 `json:"offlineDataSize"`
	PendingActionsKB int64 `json:"pendingActionsSize"`
	TotalKB          int64 `json:"totalSize"`
}

// StorageInfo returns the current storage usage. Read errors count as zero.
func (e *Engine) StorageInfo() StorageInfo {
	snapSize, err := e.st.Size(store.KeySnapshot)
	if err != nil {
		e.config.Logger.Printf("Failed to size snapshot: %v", err)
	}
	actionsSize, err := e.st.Size(store.KeyPendingActions)
	if err != nil {
		e.config.Logger.Printf("Failed to size pending actions: %v", err)
	}

	return StorageInfo{
		SnapshotKB:       snapSize / 1024,
		PendingActionsKB: actionsSize / 1024,
		TotalKB:          (snapSize + actionsSize) / 1024,
	}
}

// Queue exposes the underlying queue for read-only listing (CLI `actions`).
func (e *Engine) Queue() *action.Queue {
	return e.queue
}

// Cache exposes the snapshot cache for offline reads.
func (e *Engine) Cache() *snapshot.Cache {
	return e.cache
}

// notify pushes a freshly derived status to all subscribers. Must be
// called without holding e.mu: the reporter reads back through Syncing and
// Progress.
func (e *Engine) notify() {
	e.listenerMu.Lock()
	listeners := make([]func(status.SyncStatus), len(e.listeners))
	copy(listeners, e.listeners)
	e.listenerMu.Unlock()

	if len(listeners) == 0 {
		return
	}

	s := e.reporter.Status()
	for _, fn := range listeners {
		fn(s)
	}
}
