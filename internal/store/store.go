// Package store provides the flat key-value persistence surface behind
// accumulator snapshots. Keys are namespaced strings; values are opaque
// serialized blobs owned by the caller.
package store

// #region interface

// Store is a flat key-value surface with last-write-wins semantics.
type Store interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(key string) (value []byte, found bool, err error)
	// Put writes value under key, replacing any prior value.
	Put(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Close releases underlying resources.
	Close() error
}

// #endregion interface

// #region keys

// KeyPrefix namespaces every percept key in a shared store.
const KeyPrefix = "percept:"

// Key builds the storage key for one classifier kind and instance id.
func Key(kind, id string) string {
	return KeyPrefix + kind + ":" + id
}

// #endregion keys
