package kv

import (
	"context"
	"errors"
	"net/url"
	"os"

	"github.com/starford/hangar/internal/storage"
)

// File is a Store keeping one JSON file per key in a directory. Writes go
// through the storage provider's atomic rename.
type File struct {
	fs *storage.FS
}

var _ Store = (*File)(nil)

// OpenFile creates dir when missing and returns a File store rooted there.
func OpenFile(dir string) (*File, error) {
	fs, err := storage.OpenOrCreate(dir)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs}, nil
}

func fileName(key string) string {
	return url.QueryEscape(key) + ".json"
}

// Get returns the value stored at key.
func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := f.fs.Read(fileName(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put replaces the value at key.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	return f.fs.Write(fileName(key), value)
}

// Delete removes key; a missing key is not an error.
func (f *File) Delete(_ context.Context, key string) error {
	return f.fs.Delete(fileName(key))
}

// Close is a no-op.
func (f *File) Close() error { return nil }
