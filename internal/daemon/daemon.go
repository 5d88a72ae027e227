// Package daemon runs the long-lived wiring around the sync engine: the
// spool watcher that turns completed-form files into queued actions, the
// connectivity monitor that kicks sync cycles on reconnect, and the status
// server the field app's status bar subscribes to.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/safetycheck/fieldsync/internal/action"
	"github.com/safetycheck/fieldsync/internal/connectivity"
	"github.com/safetycheck/fieldsync/internal/snapshot"
	enginesync "github.com/safetycheck/fieldsync/internal/sync"
)

// Config holds configuration for the daemon.
type Config struct {
	// SpoolDir is where the form UI drops completed-inspection JSON
	// files. Processed files move to SpoolDir/processed; unparseable
	// ones to SpoolDir/rejected.
	SpoolDir string

	// DebounceInterval is how long to wait before processing file
	// changes. This batches rapid writes from the form UI.
	DebounceInterval time.Duration

	// ListenAddr is the status server address (default 127.0.0.1:7317).
	ListenAddr string

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 250 * time.Millisecond,
		ListenAddr:       "127.0.0.1:7317",
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// completionFile is the shape the form UI writes into the spool directory.
type completionFile struct {
	WorkOrderID  string          `json:"workOrderId"`
	InspectionID string          `json:"inspectionId"`
	Result       json.RawMessage `json:"result"`
	Photos       json.RawMessage `json:"photos"`
	Signatures   json.RawMessage `json:"signatures"`
}

// Daemon orchestrates spool watching, connectivity, and status broadcast.
type Daemon struct {
	syncer  enginesync.Syncer
	monitor *connectivity.Monitor
	config  *Config

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time // filepath -> queued at
	changeQueueMu sync.Mutex

	status *StatusServer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a daemon. The syncer and monitor must be constructed by the
// caller; the daemon owns their runtime wiring, not their lifecycle
// dependencies.
func New(syncer enginesync.Syncer, monitor *connectivity.Monitor, config *Config) (*Daemon, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultConfig().ListenAddr
	}
	if config.SpoolDir == "" {
		return nil, fmt.Errorf("spool directory cannot be empty")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		syncer:      syncer,
		monitor:     monitor,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		status:      NewStatusServer(config.ListenAddr, config.Logger),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins daemon operation and blocks until ctx is cancelled.
//
// On startup the daemon:
//  1. Processes any spool files left over from a previous run
//  2. Starts watching the spool directory
//  3. Starts the connectivity heartbeat (auto-sync on reconnect)
//  4. Serves the status WebSocket
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	for _, sub := range []string{"", "processed", "rejected"} {
		if err := os.MkdirAll(filepath.Join(d.config.SpoolDir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create spool directory: %w", err)
		}
	}

	// Drain anything dropped while we weren't running.
	if err := d.drainSpool(); err != nil {
		return fmt.Errorf("initial spool drain failed: %w", err)
	}

	if err := d.watcher.Add(d.config.SpoolDir); err != nil {
		return fmt.Errorf("failed to watch spool directory: %w", err)
	}
	d.config.Logger.Printf("Watching spool: %s", d.config.SpoolDir)

	// Push every engine status change to connected clients.
	d.syncer.Subscribe(d.status.Publish)

	d.monitor.OnChange(func(online bool) {
		d.status.Publish(d.syncer.Status())
		if !online {
			return
		}
		go func() {
			if err := d.syncer.SyncPendingActions(d.ctx); err != nil {
				d.config.Logger.Printf("Reconnect sync failed: %v", err)
			}
		}()
	})
	d.monitor.Start()

	if err := d.status.Start(d.syncer.Status); err != nil {
		return err
	}

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.processChangeQueue()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.monitor.Stop()

	if err := d.status.Stop(); err != nil {
		d.config.Logger.Printf("Error stopping status server: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// drainSpool processes all completion files currently in the spool.
// Individual file failures are logged and don't stop the drain.
func (d *Daemon) drainSpool() error {
	entries, err := os.ReadDir(d.config.SpoolDir)
	if err != nil {
		return fmt.Errorf("failed to read spool directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		d.processSpoolFile(filepath.Join(d.config.SpoolDir, entry.Name()))
	}
	return nil
}

// watchFileEvents monitors spool events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}

			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange adds a file to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

// processChangeQueue processes queued spool files once their debounce
// window has passed.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	now := time.Now()
	var ready []string
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		ready = append(ready, path)
		delete(d.changeQueue, path)
	}
	d.changeQueueMu.Unlock()

	for _, path := range ready {
		d.processSpoolFile(path)
	}
}

// processSpoolFile turns one completion file into a queued action, then
// archives the file. Unparseable files move to rejected/ so they never
// loop.
func (d *Daemon) processSpoolFile(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		d.config.Logger.Printf("Failed to read spool file %s: %v", path, err)
		return
	}

	var cf completionFile
	if err := json.Unmarshal(raw, &cf); err != nil || cf.WorkOrderID == "" || cf.InspectionID == "" {
		d.config.Logger.Printf("Rejecting malformed spool file %s: %v", filepath.Base(path), err)
		d.archive(path, "rejected")
		return
	}

	id, err := d.enqueueCompletion(cf)
	if err != nil {
		d.config.Logger.Printf("Failed to enqueue %s: %v", filepath.Base(path), err)
		d.archive(path, "rejected")
		return
	}

	d.config.Logger.Printf("Queued completion %s for inspection %s", id, cf.InspectionID)
	d.archive(path, "processed")
}

func (d *Daemon) enqueueCompletion(cf completionFile) (string, error) {
	var result snapshot.InspectionResult
	if len(cf.Result) > 0 {
		if err := json.Unmarshal(cf.Result, &result); err != nil {
			return "", fmt.Errorf("bad result payload: %w", err)
		}
	}

	var photos []action.PhotoRef
	if len(cf.Photos) > 0 {
		if err := json.Unmarshal(cf.Photos, &photos); err != nil {
			return "", fmt.Errorf("bad photos payload: %w", err)
		}
	}

	var signatures []action.SignatureRef
	if len(cf.Signatures) > 0 {
		if err := json.Unmarshal(cf.Signatures, &signatures); err != nil {
			return "", fmt.Errorf("bad signatures payload: %w", err)
		}
	}

	return d.syncer.CompleteInspectionOffline(cf.WorkOrderID, cf.InspectionID, result, photos, signatures)
}

// archive moves a spool file into a subdirectory, deleting on conflict.
func (d *Daemon) archive(path, sub string) {
	dst := filepath.Join(d.config.SpoolDir, sub, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		d.config.Logger.Printf("Failed to archive %s: %v", filepath.Base(path), err)
		_ = os.Remove(path)
	}
}
