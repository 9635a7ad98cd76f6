package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/starford/hangar/internal/apperr"
	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/storage"
)

// Loader produces the snapshot the repository starts from.
type Loader interface {
	Load(ctx context.Context) (*artifact.Snapshot, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*artifact.Snapshot, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) (*artifact.Snapshot, error) { return f(ctx) }

// ArtifactLoader reads the build artifacts from a directory.
type ArtifactLoader struct {
	Dir string
}

// Load implements Loader. A missing directory reports apperr.ErrUnavailable.
func (l ArtifactLoader) Load(ctx context.Context) (*artifact.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store, err := storage.NewFS(l.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalog: artifacts dir %s: %w", l.Dir, apperr.ErrUnavailable)
		}
		return nil, err
	}
	return artifact.Read(store)
}
