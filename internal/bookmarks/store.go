// Package bookmarks persists per-profile bookmarks and notes in a key-value
// store. Every operation degrades to a safe default when the backend is
// unavailable or holds data it cannot read.
package bookmarks

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/starford/hangar/internal/kv"
	"github.com/starford/hangar/internal/models"
	"github.com/starford/hangar/internal/validate"
)

// DefaultProfile is used when the caller does not identify itself.
const DefaultProfile = "default"

// Service owns the backend and hands out profile-scoped stores.
type Service struct {
	kv        kv.Store
	validator *validate.Validator
	logger    *slog.Logger
	now       func() time.Time

	// mu serialises read-modify-write cycles inside this process. Separate
	// processes sharing a backend are not coordinated; the last write wins.
	mu sync.Mutex
}

// NewService creates a bookmark/notes service.
func NewService(store kv.Store, v *validate.Validator, logger *slog.Logger) *Service {
	return &Service{kv: store, validator: v, logger: logger, now: time.Now}
}

// For returns the store for profile.
func (s *Service) For(profile string) *Store {
	if profile == "" {
		profile = DefaultProfile
	}
	return &Store{svc: s, profile: profile}
}

// Store is the bookmark/notes view for one profile.
type Store struct {
	svc     *Service
	profile string
}

func (st *Store) bookmarksKey() string { return st.profile + ":bookmarks" }
func (st *Store) notesKey() string     { return st.profile + ":notes" }

// Bookmarks returns every bookmark in insertion order.
func (st *Store) Bookmarks(ctx context.Context) []models.Bookmark {
	st.svc.mu.Lock()
	defer st.svc.mu.Unlock()
	return st.loadBookmarks(ctx)
}

// AddBookmark stores a bookmark unless one with id already exists. Title,
// chapter and section are sanitized as single-line text. It reports whether
// id is bookmarked after the call.
func (st *Store) AddBookmark(ctx context.Context, id, title, chapter, section string) bool {
	if id == "" {
		return false
	}
	st.svc.mu.Lock()
	defer st.svc.mu.Unlock()

	list := st.loadBookmarks(ctx)
	for _, b := range list {
		if b.ID == id {
			return true
		}
	}
	list = append(list, models.Bookmark{
		ID:        id,
		Title:     st.svc.validator.Title(title).Value,
		Chapter:   st.svc.validator.Title(chapter).Value,
		Section:   st.svc.validator.Title(section).Value,
		Timestamp: st.svc.now().UTC(),
	})
	return st.save(ctx, st.bookmarksKey(), list)
}

// RemoveBookmark deletes the bookmark with id. It reports whether the store
// was written; removing an absent id is a no-op returning true.
func (st *Store) RemoveBookmark(ctx context.Context, id string) bool {
	st.svc.mu.Lock()
	defer st.svc.mu.Unlock()

	list := st.loadBookmarks(ctx)
	kept := list[:0]
	for _, b := range list {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(list) {
		return true
	}
	return st.save(ctx, st.bookmarksKey(), kept)
}

// IsBookmarked reports whether id is bookmarked.
func (st *Store) IsBookmarked(ctx context.Context, id string) bool {
	for _, b := range st.Bookmarks(ctx) {
		if b.ID == id {
			return true
		}
	}
	return false
}

// SaveNote sanitizes and caps content, then replaces any prior note for id.
// The sanitized value is stored even when the result is invalid, so callers
// can show it alongside the reasons. saved is false when nothing was written.
func (st *Store) SaveNote(ctx context.Context, id, content string) (res validate.Result, saved bool) {
	res = st.svc.validator.Note(content)
	if id == "" {
		return res, false
	}
	st.svc.mu.Lock()
	defer st.svc.mu.Unlock()

	notes := st.loadNotes(ctx)
	notes[id] = models.Note{ID: id, Content: res.Value, Timestamp: st.svc.now().UTC()}
	return res, st.save(ctx, st.notesKey(), notes)
}

// GetNote returns the note for id.
func (st *Store) GetNote(ctx context.Context, id string) (models.Note, bool) {
	st.svc.mu.Lock()
	defer st.svc.mu.Unlock()
	n, ok := st.loadNotes(ctx)[id]
	return n, ok
}

// DeleteNote removes the note for id.
func (st *Store) DeleteNote(ctx context.Context, id string) bool {
	st.svc.mu.Lock()
	defer st.svc.mu.Unlock()

	notes := st.loadNotes(ctx)
	if _, ok := notes[id]; !ok {
		return true
	}
	delete(notes, id)
	return st.save(ctx, st.notesKey(), notes)
}

// Notes returns every note, most recent first.
func (st *Store) Notes(ctx context.Context) []models.Note {
	st.svc.mu.Lock()
	notes := st.loadNotes(ctx)
	st.svc.mu.Unlock()

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// loadBookmarks decodes entries one by one so a single old-shaped entry
// does not hide the rest.
func (st *Store) loadBookmarks(ctx context.Context) []models.Bookmark {
	var raw []json.RawMessage
	if !st.load(ctx, st.bookmarksKey(), &raw) {
		return []models.Bookmark{}
	}
	out := make([]models.Bookmark, 0, len(raw))
	for _, r := range raw {
		var b models.Bookmark
		if err := json.Unmarshal(r, &b); err != nil || b.ID == "" {
			st.svc.logger.Warn("bookmarks: dropping unreadable bookmark",
				slog.String("profile", st.profile))
			continue
		}
		out = append(out, b)
	}
	return out
}

func (st *Store) loadNotes(ctx context.Context) map[string]models.Note {
	var raw map[string]json.RawMessage
	out := map[string]models.Note{}
	if !st.load(ctx, st.notesKey(), &raw) {
		return out
	}
	for id, r := range raw {
		var n models.Note
		if err := json.Unmarshal(r, &n); err != nil {
			st.svc.logger.Warn("bookmarks: dropping unreadable note",
				slog.String("profile", st.profile), slog.String("id", id))
			continue
		}
		n.ID = id
		out[id] = n
	}
	return out
}

// load reads key into target. It returns false when the key is absent, the
// backend fails, or the payload does not decode; failures are logged.
func (st *Store) load(ctx context.Context, key string, target any) bool {
	data, ok, err := st.svc.kv.Get(ctx, key)
	if err != nil {
		st.svc.logger.Warn("bookmarks: backend read failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		st.svc.logger.Warn("bookmarks: corrupt entry, treating as empty",
			slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (st *Store) save(ctx context.Context, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		st.svc.logger.Error("bookmarks: encode failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if err := st.svc.kv.Put(ctx, key, data); err != nil {
		st.svc.logger.Warn("bookmarks: backend write failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}
