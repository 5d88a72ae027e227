// Package store provides the durable local key-value store backing the
// offline engine.
//
// The store holds three logical keys: the cached offline snapshot, the
// pending-action queue, and the last-sync timestamp. The primary
// implementation is SQLite in WAL mode so a write either fully lands or is
// absent on the next read. A memory implementation backs degraded mode
// (unwritable disk) and tests.
package store

// Logical keys. The shapes stored under them are part of the contract with
// the field app and must not change without a migration.
const (
	KeySnapshot       = "offline_snapshot"
	KeyPendingActions = "pending_actions"
	KeyLastSync       = "last_sync_timestamp"
)

// Store is the persistence contract shared by the queue and the snapshot
// cache. Implementations must make each Set atomic per key; no cross-key
// transactionality is provided. Last writer wins.
type Store interface {
	// Get returns the value for key. The second return is false when the
	// key has never been written or was deleted.
	Get(key string) ([]byte, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Size returns the stored byte size for key, 0 when absent.
	Size(key string) (int64, error)

	Close() error
}
