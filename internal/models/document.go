// Package models defines the domain types for Hangar.
package models

import (
	"strings"
	"time"
)

// Sentinels used when the directory layout or front-matter leaves a key undetermined.
const (
	DefaultChapter = "general"
	DefaultSection = "main"
)

// Difficulty is the optional skill level of a document.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists the known levels in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty maps a free-form value onto a known level, case-insensitively.
// It returns false for anything it does not recognise.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Document is the atomic unit of training content.
type Document struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	Chapter         string         `json:"chapter"`
	Section         string         `json:"section"`
	Content         string         `json:"content"`
	FrontMatter     map[string]any `json:"frontMatter"`
	Difficulty      Difficulty     `json:"difficulty,omitempty"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
	FilePath        string         `json:"filePath"`
	Checksum        string         `json:"checksum,omitempty"`
}

// DocumentID builds the composite identifier {chapter}-{section}-{slug}.
func DocumentID(chapter, section, slug string) string {
	if section == "" {
		section = DefaultSection
	}
	return chapter + "-" + section + "-" + slug
}

// Bookmark is a saved pointer to a document.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Chapter   string    `json:"chapter"`
	Section   string    `json:"section"`
	Timestamp time.Time `json:"timestamp"`
}

// Note is the latest free-text note attached to a document id.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SourceFile is a markdown file discovered in the content tree.
type SourceFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
