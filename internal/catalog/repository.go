// Package catalog serves read-only queries over the ingested training
// content. The content is held as an immutable snapshot that can be swapped
// atomically when the content tree is rebuilt.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/models"
)

// Snapshot sources reported by Source.
const (
	SourceArtifacts = "artifacts"
	SourceFallback  = "fallback"
	SourceRebuild   = "rebuild"
)

type state struct {
	snap   *artifact.Snapshot
	source string
}

// Repository answers content queries. Queries never fail: unknown keys give
// empty results or a false "found" flag. Before initialization every query
// sees an empty catalog.
type Repository struct {
	loader Loader
	logger *slog.Logger

	initMu sync.Mutex
	cur    atomic.Pointer[state]
}

// New creates a repository that fills itself from loader on first use.
func New(loader Loader, logger *slog.Logger) *Repository {
	return &Repository{loader: loader, logger: logger}
}

// EnsureInitialized loads the snapshot once. When the loader fails or
// yields no documents the bundled fallback set is used instead. Later and
// concurrent calls return without further work. It only fails when ctx is
// done before loading started.
func (r *Repository) EnsureInitialized(ctx context.Context) error {
	if r.cur.Load() != nil {
		return nil
	}
	r.initMu.Lock()
	defer r.initMu.Unlock()
	if r.cur.Load() != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snap, err := r.loader.Load(ctx)
	switch {
	case err != nil:
		r.logger.Warn("catalog: artifacts unavailable, using fallback set",
			slog.String("error", err.Error()))
	case snap.Len() == 0:
		r.logger.Warn("catalog: artifacts empty, using fallback set")
	default:
		r.cur.Store(&state{snap: snap, source: SourceArtifacts})
		r.logger.Info("catalog: loaded artifacts",
			slog.Int("documents", snap.Len()),
			slog.Int("chapters", len(snap.Index.Chapters())),
			slog.String("version", snap.Version))
		return nil
	}

	fb := Fallback()
	r.cur.Store(&state{snap: fb, source: SourceFallback})
	r.logger.Info("catalog: loaded fallback set", slog.Int("documents", fb.Len()))
	return nil
}

// Initialized reports whether a snapshot is in place.
func (r *Repository) Initialized() bool {
	return r.cur.Load() != nil
}

// Replace swaps in a rebuilt snapshot. Readers holding the previous
// snapshot keep a consistent view of it.
func (r *Repository) Replace(snap *artifact.Snapshot) {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	r.cur.Store(&state{snap: snap, source: SourceRebuild})
	r.logger.Info("catalog: snapshot replaced",
		slog.Int("documents", snap.Len()),
		slog.String("version", snap.Version))
}

var empty = artifact.Empty()

func (r *Repository) snapshot() *artifact.Snapshot {
	if st := r.cur.Load(); st != nil {
		return st.snap
	}
	return empty
}

// Version identifies the current content; it changes whenever the document
// list does.
func (r *Repository) Version() string {
	return r.snapshot().Version
}

// Source names where the current snapshot came from.
func (r *Repository) Source() string {
	if st := r.cur.Load(); st != nil {
		return st.source
	}
	return ""
}

// All returns every document in ingestion order. The slice is shared and
// must not be modified.
func (r *Repository) All() []models.Document {
	return r.snapshot().Documents
}

// ByChapter returns all documents of chapter across its sections, in
// section order.
func (r *Repository) ByChapter(chapter string) []models.Document {
	idx := r.snapshot().Index
	out := []models.Document{}
	for _, sec := range idx.Sections(chapter) {
		out = append(out, idx.Documents(chapter, sec)...)
	}
	return out
}

// ByChapterAndSection returns the documents filed under chapter/section.
func (r *Repository) ByChapterAndSection(chapter, section string) []models.Document {
	if section == "" {
		section = models.DefaultSection
	}
	docs := r.snapshot().Index.Documents(chapter, section)
	if docs == nil {
		return []models.Document{}
	}
	return docs
}

// Specific returns the document with slug inside chapter/section.
func (r *Repository) Specific(chapter, section, slug string) (models.Document, bool) {
	if section == "" {
		section = models.DefaultSection
	}
	return r.snapshot().Index.Lookup(chapter, section, slug)
}

// ByID returns the document with id.
func (r *Repository) ByID(id string) (models.Document, bool) {
	for _, d := range r.snapshot().Documents {
		if d.ID == id {
			return d, true
		}
	}
	return models.Document{}, false
}

// Search returns the documents whose title, content text, chapter or
// section contains query, ignoring case. Markup in the content is not
// searched. A blank query matches nothing.
func (r *Repository) Search(query string) []models.Document {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Document{}
	if q == "" {
		return out
	}
	snap := r.snapshot()
	for i, d := range snap.Documents {
		if strings.Contains(strings.ToLower(d.Title), q) ||
			strings.Contains(snap.Text(i), q) ||
			strings.Contains(strings.ToLower(d.Chapter), q) ||
			strings.Contains(strings.ToLower(d.Section), q) {
			out = append(out, d)
		}
	}
	return out
}

// AvailableChapters returns the chapter codes in index order.
func (r *Repository) AvailableChapters() []string {
	ch := r.snapshot().Index.Chapters()
	if ch == nil {
		return []string{}
	}
	return ch
}

// FileSummary is the navigation entry for one document.
type FileSummary struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Slug            string            `json:"slug"`
	Difficulty      models.Difficulty `json:"difficulty,omitempty"`
	DurationMinutes int               `json:"durationMinutes,omitempty"`
}

// SectionNode groups the files of one section.
type SectionNode struct {
	Code  string        `json:"code"`
	Files []FileSummary `json:"files"`
}

// ChapterNode is one chapter of the navigation tree.
type ChapterNode struct {
	Code     string        `json:"code"`
	Title    string        `json:"title"`
	Sections []SectionNode `json:"sections"`
}

// Structure returns the chapter tree used for navigation, in index order.
func (r *Repository) Structure() []ChapterNode {
	idx := r.snapshot().Index
	out := []ChapterNode{}
	for _, ch := range idx.Chapters() {
		node := ChapterNode{Code: ch, Title: ChapterTitle(ch), Sections: []SectionNode{}}
		for _, sec := range idx.Sections(ch) {
			sn := SectionNode{Code: sec, Files: []FileSummary{}}
			for _, d := range idx.Documents(ch, sec) {
				sn.Files = append(sn.Files, FileSummary{
					ID:              d.ID,
					Title:           d.Title,
					Slug:            d.Slug,
					Difficulty:      d.Difficulty,
					DurationMinutes: d.DurationMinutes,
				})
			}
			node.Sections = append(node.Sections, sn)
		}
		out = append(out, node)
	}
	return out
}

// Stats aggregates the catalog.
type Stats struct {
	TotalDocuments int                       `json:"totalDocuments"`
	Chapters       int                       `json:"chapters"`
	ByDifficulty   map[models.Difficulty]int `json:"byDifficulty"`
	// Unrated counts documents without a difficulty.
	Unrated int `json:"unrated"`
}

// Stats counts documents in one pass over the flat list.
func (r *Repository) Stats() Stats {
	snap := r.snapshot()
	st := Stats{
		TotalDocuments: len(snap.Documents),
		Chapters:       len(snap.Index.Chapters()),
		ByDifficulty:   make(map[models.Difficulty]int, len(models.Difficulties)),
	}
	for _, d := range models.Difficulties {
		st.ByDifficulty[d] = 0
	}
	for _, d := range snap.Documents {
		if d.Difficulty == "" {
			st.Unrated++
			continue
		}
		st.ByDifficulty[d.Difficulty]++
	}
	return st
}
