// Package persist is the shared snapshot adapter between accumulators and
// the key-value store. Snapshots are JSON; an absent or malformed value
// hydrates to the caller's defaults instead of propagating a parse error.
package persist

import (
	"encoding/json"
	"fmt"

	"percept/internal/store"
)

// #region load

// Load reads the snapshot stored under Key(kind, id). When the key is
// absent or the stored value does not decode, it returns def unchanged and
// hydrated reports false; a partially decoded value is never returned.
// Only store I/O failures return an error.
func Load[T any](s store.Store, kind, id string, def T) (snap T, hydrated bool, err error) {
	raw, found, err := s.Get(store.Key(kind, id))
	if err != nil {
		return def, false, fmt.Errorf("load %s/%s: %w", kind, id, err)
	}
	if !found {
		return def, false, nil
	}
	out := def
	if err := json.Unmarshal(raw, &out); err != nil {
		// Malformed prior state is treated as no prior state.
		return def, false, nil
	}
	return out, true, nil
}

// #endregion load

// #region save

// Save serializes src and writes it under Key(kind, id).
func Save(s store.Store, kind, id string, src any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", kind, id, err)
	}
	if err := s.Put(store.Key(kind, id), raw); err != nil {
		return fmt.Errorf("save %s/%s: %w", kind, id, err)
	}
	return nil
}

// #endregion save

// #region reset

// Reset deletes the snapshot stored under Key(kind, id).
func Reset(s store.Store, kind, id string) error {
	if err := s.Delete(store.Key(kind, id)); err != nil {
		return fmt.Errorf("reset %s/%s: %w", kind, id, err)
	}
	return nil
}

// #endregion reset
