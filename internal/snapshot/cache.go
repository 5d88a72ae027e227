package snapshot

import (
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/safetycheck/fieldsync/internal/store"
)

// Cache owns the current snapshot and persists it through the store.
//
// Persistence failures are logged and the cache keeps serving from memory;
// a broken disk must never block the form-completion flow.
type Cache struct {
	mu     sync.RWMutex
	snap   *Snapshot
	st     store.Store
	logger *log.Logger
}

// NewCache creates a cache bound to st and loads any persisted snapshot.
//
// If logger is nil, a default logger writing to stderr is used.
func NewCache(st store.Store, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.New(os.Stderr, "[snapshot] ", log.LstdFlags)
	}

	c := &Cache{st: st, logger: logger}
	c.load()
	return c
}

// load reads the persisted snapshot. A missing or unreadable value leaves
// the cache empty.
func (c *Cache) load() {
	raw, ok, err := c.st.Get(store.KeySnapshot)
	if err != nil {
		c.logger.Printf("Failed to load snapshot: %v", err)
		return
	}
	if !ok {
		return
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.logger.Printf("Failed to decode snapshot: %v", err)
		return
	}
	c.snap = &snap
}

// Current returns a copy of the cached snapshot. The second return is false
// when no snapshot has been downloaded.
func (c *Cache) Current() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap == nil {
		return Snapshot{}, false
	}
	return *c.snap, true
}

// Download replaces the cached snapshot. This is the "download for offline"
// entry point; it is also how post-sync reconciliation lands.
func (c *Cache) Download(snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = &snap
	return c.persistLocked()
}

// ApplyCompletion applies an optimistic completion to the cached snapshot
// and persists the result. Returns an error when no snapshot is loaded or
// the target inspection is not in it; the cache is unchanged in that case.
func (c *Cache) ApplyCompletion(workOrderID, inspectionID string, result InspectionResult, completedAt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap == nil {
		// Nothing downloaded; the pending action still carries the result.
		return nil
	}

	next, err := ApplyCompletion(*c.snap, workOrderID, inspectionID, result, completedAt)
	if err != nil {
		return err
	}

	c.snap = &next
	return c.persistLocked()
}

// Clear drops the snapshot from memory and the store.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = nil
	return c.st.Delete(store.KeySnapshot)
}

// persistLocked writes the snapshot to the store. Caller holds mu.
// Write failures are logged, not returned: the in-memory copy stays
// authoritative for the session.
func (c *Cache) persistLocked() error {
	raw, err := json.Marshal(c.snap)
	if err != nil {
		return err
	}
	if err := c.st.Set(store.KeySnapshot, raw); err != nil {
		c.logger.Printf("Failed to persist snapshot: %v", err)
	}
	return nil
}
