// Package storage defines the file-system abstraction shared by the content
// tree, the build artifacts and the file-backed key-value store.
package storage

import "github.com/starford/hangar/internal/models"

// Provider is the interface for rooted file operations.
type Provider interface {
	// Root returns the absolute directory every path is resolved against.
	Root() string
	// List returns every .md file under dir (relative to root) in walk order.
	List(dir string) ([]models.SourceFile, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}
