// Package storage provides the persistent key-value store backing the
// durable queue, the content caches and the completion ledger.
package storage

// KV is the synchronous string-keyed store the engine persists through.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value for key. The second result is false when the
	// key is absent; absence is not an error.
	Get(key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Keys returns all keys with the given prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Close releases the underlying store.
	Close() error
}
