// Package testutil provides shared test helpers for content trees and
// key-value stores.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/kv"
	"github.com/starford/hangar/internal/models"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteTree writes files (slash path → content) under root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// ContentTree creates a temporary content directory holding files.
func ContentTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}

// SQLiteKV opens a temporary SQLite key-value store that is closed on cleanup.
func SQLiteKV(t *testing.T) kv.Store {
	t.Helper()
	store, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "hangar-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Snapshot builds a snapshot of docs, failing the test on encode errors.
func Snapshot(t *testing.T, docs []models.Document) *artifact.Snapshot {
	t.Helper()
	snap, err := artifact.NewSnapshot(docs)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}
