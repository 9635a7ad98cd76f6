package api

import (
	"time"

	"github.com/starford/hangar/internal/catalog"
	"github.com/starford/hangar/internal/models"
)

// DocumentListResponse wraps a list of documents.
type DocumentListResponse struct {
	Documents []models.Document `json:"documents" validate:"required"`
	Total     int               `json:"total" example:"42" validate:"required"`
}

// ChapterRef names one chapter.
type ChapterRef struct {
	Code  string `json:"code" example:"21" validate:"required"`
	Title string `json:"title" example:"Air Conditioning" validate:"required"`
}

// ChapterListResponse lists the known chapters in index order.
type ChapterListResponse struct {
	Chapters []ChapterRef `json:"chapters" validate:"required"`
}

// ChapterResponse holds the documents of one chapter or section.
type ChapterResponse struct {
	Chapter   string            `json:"chapter" example:"21" validate:"required"`
	Title     string            `json:"title" example:"Air Conditioning" validate:"required"`
	Section   string            `json:"section,omitempty" example:"20"`
	Documents []models.Document `json:"documents" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string            `json:"query" example:"fuel" validate:"required"`
	Results []models.Document `json:"results" validate:"required"`
	Total   int               `json:"total" validate:"required"`
}

// StructureResponse wraps the navigation tree.
type StructureResponse struct {
	Version  string                `json:"version" validate:"required"`
	Chapters []catalog.ChapterNode `json:"chapters" validate:"required"`
}

// AddBookmarkRequest is the request body for POST /bookmarks. Missing title,
// chapter and section are taken from the catalog when id is known.
type AddBookmarkRequest struct {
	ID      string `json:"id" example:"21-20-recirculation" validate:"required"`
	Title   string `json:"title" example:"Recirculating System"`
	Chapter string `json:"chapter" example:"21"`
	Section string `json:"section" example:"20"`
}

// BookmarkListResponse lists a profile's bookmarks in insertion order.
type BookmarkListResponse struct {
	Bookmarks []models.Bookmark `json:"bookmarks" validate:"required"`
}

// BookmarkStatus reports whether one id is bookmarked.
type BookmarkStatus struct {
	ID         string `json:"id" validate:"required"`
	Bookmarked bool   `json:"bookmarked"`
}

// SaveNoteRequest is the request body for PUT /notes/{id}.
type SaveNoteRequest struct {
	Content string `json:"content" example:"Check filter differential pressure."`
}

// NoteResponse is a stored note plus the validation outcome of the write
// that produced it.
type NoteResponse struct {
	ID        string    `json:"id" validate:"required"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Valid     bool      `json:"valid"`
	Reasons   []string  `json:"reasons,omitempty"`
}

// NoteListResponse lists a profile's notes, most recent first.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
}

// RenderRequest is the request body for POST /render.
type RenderRequest struct {
	Markdown string `json:"markdown" example:"# Title" validate:"required"`
}

// RenderResponse carries sanitized HTML.
type RenderResponse struct {
	HTML string `json:"html" validate:"required"`
}
