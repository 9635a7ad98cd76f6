// Package ingest walks the Markdown content tree and builds the content
// index and flat document list served by the catalog.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/models"
	"github.com/starford/hangar/internal/parser"
	"github.com/starford/hangar/internal/render"
	"github.com/starford/hangar/internal/storage"
)

// Summary counts the outcome of one build.
type Summary struct {
	Documents int
	Chapters  int
	Skipped   int
}

// Builder turns a content directory into a snapshot. Bodies are rendered
// with the configured renderer; callers pass a render.Pipeline so the
// stored HTML is sanitized.
type Builder struct {
	renderer render.Renderer
	logger   *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(r render.Renderer, logger *slog.Logger) *Builder {
	return &Builder{renderer: r, logger: logger}
}

// Build walks contentDir depth-first. A missing directory yields an empty
// snapshot. Files with malformed front-matter, and documents whose id was
// already taken earlier in the walk, are skipped with a warning.
func (b *Builder) Build(ctx context.Context, contentDir string) (*artifact.Snapshot, Summary, error) {
	var sum Summary

	store, err := storage.NewFS(contentDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("ingest: content dir missing, building empty set",
				slog.String("dir", contentDir))
			return artifact.Empty(), sum, nil
		}
		return nil, sum, fmt.Errorf("ingest: open content: %w", err)
	}

	files, err := store.List("")
	if err != nil {
		return nil, sum, fmt.Errorf("ingest: walk: %w", err)
	}

	docs := make([]models.Document, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, sum, err
		}
		data, err := store.Read(f.Path)
		if err != nil {
			b.logger.Warn("ingest: read failed, skipping",
				slog.String("path", f.Path), slog.String("error", err.Error()))
			sum.Skipped++
			continue
		}
		doc, err := b.document(f, data)
		if err != nil {
			b.logger.Warn("ingest: malformed front-matter, skipping",
				slog.String("path", f.Path), slog.String("error", err.Error()))
			sum.Skipped++
			continue
		}
		if first, dup := seen[doc.ID]; dup {
			b.logger.Warn("ingest: duplicate document, keeping first",
				slog.String("id", doc.ID),
				slog.String("path", f.Path),
				slog.String("kept", first))
			sum.Skipped++
			continue
		}
		seen[doc.ID] = f.Path
		docs = append(docs, doc)
	}

	snap, err := artifact.NewSnapshot(docs)
	if err != nil {
		return nil, sum, fmt.Errorf("ingest: %w", err)
	}
	sum.Documents = len(docs)
	sum.Chapters = len(snap.Index.Chapters())
	b.logger.Info("ingest: build complete",
		slog.Int("documents", sum.Documents),
		slog.Int("chapters", sum.Chapters),
		slog.Int("skipped", sum.Skipped),
		slog.String("version", snap.Version))
	return snap, sum, nil
}

func (b *Builder) document(f models.SourceFile, data []byte) (models.Document, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return models.Document{}, err
	}

	chapter, section := placement(f.Path, res.Chapter, res.Section)
	slug := strings.TrimSuffix(path.Base(f.Path), path.Ext(f.Path))
	title := res.Title
	if title == "" {
		title = parser.TitleFromSlug(slug)
	}

	return models.Document{
		ID:              models.DocumentID(chapter, section, slug),
		Title:           title,
		Slug:            slug,
		Chapter:         chapter,
		Section:         section,
		Content:         b.renderer.Render(res.Body),
		FrontMatter:     res.FrontMatter,
		Difficulty:      res.Difficulty,
		DurationMinutes: res.DurationMinutes,
		FilePath:        f.Path,
		Checksum:        f.Checksum,
	}, nil
}

// placement maps a slash path to (chapter, section). Directories decide
// first; front-matter fills in what the directory depth leaves open.
func placement(rel, fmChapter, fmSection string) (chapter, section string) {
	dirs := strings.Split(path.Dir(rel), "/")
	if dirs[0] == "." {
		dirs = nil
	}
	switch len(dirs) {
	case 0:
		chapter, section = fmChapter, fmSection
	case 1:
		chapter, section = dirs[0], fmSection
	default:
		chapter, section = dirs[0], dirs[1]
	}
	if chapter == "" {
		chapter = models.DefaultChapter
	}
	if section == "" {
		section = models.DefaultSection
	}
	return chapter, section
}

// WriteArtifacts stores snap in dir, creating the directory when needed.
func WriteArtifacts(dir string, snap *artifact.Snapshot) error {
	store, err := storage.OpenOrCreate(dir)
	if err != nil {
		return fmt.Errorf("ingest: artifacts dir: %w", err)
	}
	return artifact.Write(store, snap)
}
