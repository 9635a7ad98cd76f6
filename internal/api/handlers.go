package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hangar/internal/bookmarks"
	"github.com/starford/hangar/internal/catalog"
	"github.com/starford/hangar/internal/render"
	"github.com/starford/hangar/internal/validate"
)

const (
	maxJSONBody   = 1 << 20
	maxRenderBody = 4 << 20
)

// Handler holds API route handlers.
type Handler struct {
	catalog   *catalog.Repository
	bookmarks *bookmarks.Service
	validator *validate.Validator
	renderer  render.Renderer
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		catalog:   d.Catalog,
		bookmarks: d.Bookmarks,
		validator: d.Validator,
		renderer:  d.Renderer,
	}
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List every document in ingestion order
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, _ *http.Request) {
	docs := h.catalog.All()
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary		Get a document by id
//	@Tags			content
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	models.Document
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	d, ok := h.catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ListChapters handles GET /api/chapters.
func (h *Handler) ListChapters(w http.ResponseWriter, _ *http.Request) {
	codes := h.catalog.AvailableChapters()
	out := make([]ChapterRef, 0, len(codes))
	for _, c := range codes {
		out = append(out, ChapterRef{Code: c, Title: catalog.ChapterTitle(c)})
	}
	writeJSON(w, http.StatusOK, ChapterListResponse{Chapters: out})
}

// GetChapter handles GET /api/chapters/{chapter}. An unknown chapter yields
// an empty list.
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	ch := chi.URLParam(r, "chapter")
	writeJSON(w, http.StatusOK, ChapterResponse{
		Chapter:   ch,
		Title:     catalog.ChapterTitle(ch),
		Documents: h.catalog.ByChapter(ch),
	})
}

// GetSection handles GET /api/chapters/{chapter}/sections/{section}.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	ch, sec := chi.URLParam(r, "chapter"), chi.URLParam(r, "section")
	writeJSON(w, http.StatusOK, ChapterResponse{
		Chapter:   ch,
		Title:     catalog.ChapterTitle(ch),
		Section:   sec,
		Documents: h.catalog.ByChapterAndSection(ch, sec),
	})
}

// GetSpecific handles GET /api/chapters/{chapter}/sections/{section}/{slug}.
//
//	@Summary		Get a document by chapter, section and slug
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	models.Document
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chapters/{chapter}/sections/{section}/{slug} [get]
func (h *Handler) GetSpecific(w http.ResponseWriter, r *http.Request) {
	d, ok := h.catalog.Specific(chi.URLParam(r, "chapter"), chi.URLParam(r, "section"), chi.URLParam(r, "slug"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search.
//
//	@Summary		Case-insensitive substring search over documents
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Search query"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	if strings.TrimSpace(raw) == "" {
		writeJSON(w, http.StatusOK, SearchResponse{Results: h.catalog.Search("")})
		return
	}
	res := h.validator.Query(raw)
	if !res.Valid {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid query", res.Reasons...))
		return
	}
	docs := h.catalog.Search(res.Value)
	writeJSON(w, http.StatusOK, SearchResponse{Query: res.Value, Results: docs, Total: len(docs)})
}

// Structure handles GET /api/structure. The response carries the snapshot
// version as its ETag.
func (h *Handler) Structure(w http.ResponseWriter, r *http.Request) {
	version := h.catalog.Version()
	etag := `"` + version + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, StructureResponse{Version: version, Chapters: h.catalog.Structure()})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Stats())
}

// Render handles POST /api/render.
//
//	@Summary		Render Markdown to sanitized HTML
//	@Tags			render
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Markdown source"
//	@Success		200		{object}	RenderResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !decodeJSON(w, r, maxRenderBody, &req) {
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{HTML: h.renderer.Render(req.Markdown)})
}

// ListBookmarks handles GET /api/bookmarks.
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	st := h.bookmarks.For(profileFrom(r.Context()))
	writeJSON(w, http.StatusOK, BookmarkListResponse{Bookmarks: st.Bookmarks(r.Context())})
}

// AddBookmark handles POST /api/bookmarks. Adding an existing id is a no-op.
//
//	@Summary		Bookmark a document
//	@Tags			bookmarks
//	@Accept			json
//	@Produce		json
//	@Param			X-Profile	header		string				false	"Profile id"
//	@Param			body		body		AddBookmarkRequest	true	"Bookmark"
//	@Success		200			{object}	BookmarkStatus
//	@Failure		400			{object}	errResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/bookmarks [post]
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var req AddBookmarkRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	if d, ok := h.catalog.ByID(req.ID); ok {
		if req.Title == "" {
			req.Title = d.Title
		}
		if req.Chapter == "" {
			req.Chapter = d.Chapter
		}
		if req.Section == "" {
			req.Section = d.Section
		}
	}

	profile := profileFrom(r.Context())
	if !h.bookmarks.For(profile).AddBookmark(r.Context(), req.ID, req.Title, req.Chapter, req.Section) {
		slog.Warn("api: add bookmark failed", slog.String("profile", profile), slog.String("id", req.ID))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("bookmark store unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, BookmarkStatus{ID: req.ID, Bookmarked: true})
}

// GetBookmark handles GET /api/bookmarks/{id}.
func (h *Handler) GetBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok := h.bookmarks.For(profileFrom(r.Context())).IsBookmarked(r.Context(), id)
	writeJSON(w, http.StatusOK, BookmarkStatus{ID: id, Bookmarked: ok})
}

// RemoveBookmark handles DELETE /api/bookmarks/{id}.
func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.bookmarks.For(profileFrom(r.Context())).RemoveBookmark(r.Context(), id) {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("bookmark store unavailable"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	st := h.bookmarks.For(profileFrom(r.Context()))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: st.Notes(r.Context())})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, ok := h.bookmarks.For(profileFrom(r.Context())).GetNote(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{ID: n.ID, Content: n.Content, Timestamp: n.Timestamp, Valid: true})
}

// SaveNote handles PUT /api/notes/{id}. The sanitized, truncated content is
// stored even when validation fails; the response is then 422 with reasons.
//
//	@Summary		Save the note attached to a document
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			X-Profile	header		string			false	"Profile id"
//	@Param			id			path		string			true	"Document id"
//	@Param			body		body		SaveNoteRequest	true	"Note content"
//	@Success		200			{object}	NoteResponse
//	@Failure		422			{object}	NoteResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	var req SaveNoteRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	profile := profileFrom(r.Context())
	st := h.bookmarks.For(profile)

	res, saved := st.SaveNote(r.Context(), id, req.Content)
	if !saved {
		slog.Warn("api: save note failed", slog.String("profile", profile), slog.String("id", id))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("note store unavailable"))
		return
	}
	resp := NoteResponse{ID: id, Content: res.Value, Valid: res.Valid, Reasons: res.Reasons}
	if n, ok := st.GetNote(r.Context(), id); ok {
		resp.Timestamp = n.Timestamp
	}
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if !h.bookmarks.For(profileFrom(r.Context())).DeleteNote(r.Context(), chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("note store unavailable"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
