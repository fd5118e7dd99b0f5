package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	bdg, err := NewBadgerStore(InMemoryBadgerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { bdg.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"badger": bdg,
		"memory": NewMemStore(),
	}
}

func TestStorePutGetDelete(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			key := Key("behavior", "cta-button")

			_, found, err := s.Get(key)
			require.NoError(t, err)
			assert.False(t, found, "absent key should not be found")

			require.NoError(t, s.Put(key, []byte(`{"clicks":3}`)))
			got, found, err := s.Get(key)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte(`{"clicks":3}`), got)

			// Last write wins.
			require.NoError(t, s.Put(key, []byte(`{"clicks":4}`)))
			got, found, err = s.Get(key)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte(`{"clicks":4}`), got)

			require.NoError(t, s.Delete(key))
			_, found, err = s.Get(key)
			require.NoError(t, err)
			assert.False(t, found, "deleted key should not be found")

			// Deleting an absent key is not an error.
			require.NoError(t, s.Delete(key))
		})
	}
}

func TestSQLiteStoreListKeys(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(Key("behavior", "a"), []byte("1")))
	require.NoError(t, s.Put(Key("intent", "a"), []byte("2")))
	require.NoError(t, s.Put(Key("behavior", "b"), []byte("3")))

	keys, err := s.ListKeys(KeyPrefix + "behavior:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"percept:behavior:a", "percept:behavior:b"}, keys)

	all, err := s.ListKeys(KeyPrefix)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(Key("recall", "hero"), []byte("snapshot")))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	got, found, err := s2.Get(Key("recall", "hero"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("snapshot"), got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "percept:intent:sidebar", Key("intent", "sidebar"))
}
