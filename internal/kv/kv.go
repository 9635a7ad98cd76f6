// Package kv provides the small key-value persistence used by the bookmark
// and notes store. Values are opaque byte blobs.
package kv

import (
	"context"
	"fmt"

	"github.com/starford/hangar/internal/apperr"
)

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Store is a flat key-value namespace. Get reports absence with ok=false,
// not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the Store for driver, rooted at path (a database file for
// sqlite, a directory for file).
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverFile:
		return OpenFile(path)
	default:
		return nil, fmt.Errorf("kv: unknown driver %q: %w", driver, apperr.ErrInvalidInput)
	}
}
