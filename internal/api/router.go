package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hangar/internal/bookmarks"
	"github.com/starford/hangar/internal/catalog"
	"github.com/starford/hangar/internal/render"
	"github.com/starford/hangar/internal/validate"
)

// Deps are the services behind the API.
type Deps struct {
	Catalog   *catalog.Repository
	Bookmarks *bookmarks.Service
	Validator *validate.Validator
	// Renderer must sanitize its output; pass a render.Pipeline.
	Renderer render.Renderer
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(d Deps, authEnabled bool, token string) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Content queries.
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/chapters", h.ListChapters)
	r.Get("/chapters/{chapter}", h.GetChapter)
	r.Get("/chapters/{chapter}/sections/{section}", h.GetSection)
	r.Get("/chapters/{chapter}/sections/{section}/{slug}", h.GetSpecific)
	r.Get("/search", h.Search)
	r.Get("/structure", h.Structure)
	r.Get("/stats", h.Stats)

	// Markdown preview.
	r.Post("/render", h.Render)

	// Per-profile bookmarks and notes.
	r.Group(func(r chi.Router) {
		r.Use(ProfileMiddleware)
		r.Get("/bookmarks", h.ListBookmarks)
		r.Post("/bookmarks", h.AddBookmark)
		r.Get("/bookmarks/{id}", h.GetBookmark)
		r.Delete("/bookmarks/{id}", h.RemoveBookmark)
		r.Get("/notes", h.ListNotes)
		r.Get("/notes/{id}", h.GetNote)
		r.Put("/notes/{id}", h.SaveNote)
		r.Delete("/notes/{id}", h.DeleteNote)
	})

	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}

	return r
}
