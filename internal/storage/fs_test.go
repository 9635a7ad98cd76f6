package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Hydraulics\nPumps.\n")
	require.NoError(t, s.Write("29/basics/pumps.md", content))

	got, err := s.Read("29/basics/pumps.md")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadMissingWrapsNotExist(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read("nope.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := tempRoot(t)
	require.NoError(t, s.Write("bye.json", []byte("{}")))
	require.NoError(t, s.Delete("bye.json"))
	require.NoError(t, s.Delete("bye.json"))
	_, err := s.Read("bye.json")
	assert.Error(t, err)
}

func TestListWalkOrderAndFilter(t *testing.T) {
	s := tempRoot(t)
	require.NoError(t, s.Write("21/20/recirculation.md", []byte("a")))
	require.NoError(t, s.Write("21/overview.md", []byte("b")))
	require.NoError(t, s.Write("28/notes.txt", []byte("skip")))
	require.NoError(t, s.Write(".drafts/hidden.md", []byte("skip")))

	items, err := s.List("")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "21/20/recirculation.md", items[0].Path)
	assert.Equal(t, "21/overview.md", items[1].Path)
	assert.Len(t, items[0].Checksum, 64)
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		_, err := s.Read(p)
		assert.Error(t, err, "read %q", p)
		assert.Error(t, s.Write(p, []byte("x")), "write %q", p)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	require.NoError(t, s.Write("index.json", []byte("v1")))
	require.NoError(t, s.Write("index.json", []byte("v2")))

	got, err := s.Read("index.json")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".hangar-tmp-*"))
	assert.Empty(t, matches)
}

func TestNewFS_Errors(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	f, err := os.CreateTemp(t.TempDir(), "file-*")
	require.NoError(t, err)
	_ = f.Close()
	_, err = NewFS(f.Name())
	assert.Error(t, err)
}

func TestOpenOrCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s, err := OpenOrCreate(dir)
	require.NoError(t, err)
	assert.DirExists(t, s.Root())
}
