package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/hangar/internal/apperr"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := Open(DriverSQLite, filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	file, err := Open(DriverFile, filepath.Join(dir, "files"))
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	return map[string]Store{DriverSQLite: sqlite, DriverFile: file}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "default:bookmarks")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Put(ctx, "default:bookmarks", []byte(`[1]`)))
			require.NoError(t, s.Put(ctx, "default:bookmarks", []byte(`[1,2]`)))

			got, ok, err := s.Get(ctx, "default:bookmarks")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, s.Delete(ctx, "default:bookmarks"))
			require.NoError(t, s.Delete(ctx, "default:bookmarks"))
			_, ok, err = s.Get(ctx, "default:bookmarks")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "alice:notes", []byte(`{"a":1}`)))
			require.NoError(t, s.Put(ctx, "bob:notes", []byte(`{"b":2}`)))

			got, _, err := s.Get(ctx, "alice:notes")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))
		})
	}
}

func TestFile_KeyCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenFile(filepath.Join(dir, "store"))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "../../escape", []byte("x")))
	assert.NoFileExists(t, filepath.Join(dir, "escape.json"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("redis", "x")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
