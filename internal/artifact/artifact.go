// Package artifact defines the build output of ingestion (the nested
// content index and the flat document list) and its on-disk JSON form.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/starford/hangar/internal/apperr"
	"github.com/starford/hangar/internal/checksum"
	"github.com/starford/hangar/internal/models"
	"github.com/starford/hangar/internal/storage"
)

// File names inside the artifacts directory.
const (
	IndexFile     = "index.json"
	DocumentsFile = "documents.json"
)

// Snapshot is one immutable ingestion result. Readers must not modify it.
type Snapshot struct {
	Index     *models.ContentIndex
	Documents []models.Document
	// Version identifies the document list content; equal lists give equal versions.
	Version string

	// text[i] is the lower-cased plain text of Documents[i].Content.
	text []string
}

// NewSnapshot builds a snapshot whose index follows the order of docs. It
// fails when a document cannot be encoded.
func NewSnapshot(docs []models.Document) (*Snapshot, error) {
	if docs == nil {
		docs = []models.Document{}
	}
	return build(models.NewContentIndex(docs), docs)
}

// Empty returns a snapshot without documents.
func Empty() *Snapshot {
	s, _ := NewSnapshot(nil)
	return s
}

func build(index *models.ContentIndex, docs []models.Document) (*Snapshot, error) {
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("artifact: encode documents: %w", err)
	}
	text := make([]string, len(docs))
	for i, d := range docs {
		text[i] = plainText(d.Content)
	}
	return &Snapshot{Index: index, Documents: docs, Version: checksum.Short(raw), text: text}, nil
}

var strict = bluemonday.StrictPolicy()

// plainText drops markup from an HTML fragment, decodes entities and folds
// whitespace. Tags become word breaks.
func plainText(fragment string) string {
	s := strict.Sanitize(strings.ReplaceAll(fragment, "<", " <"))
	return strings.ToLower(strings.Join(strings.Fields(html.UnescapeString(s)), " "))
}

// Text returns the lower-cased plain text of the i-th document's content.
func (s *Snapshot) Text(i int) string {
	if i < len(s.text) {
		return s.text[i]
	}
	return plainText(s.Documents[i].Content)
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Documents)
}

// Write stores both artifacts. Each file is replaced atomically; the
// document list is written last so a reader never sees a newer list
// paired with an older index for long.
func Write(p storage.Provider, s *Snapshot) error {
	index, err := json.MarshalIndent(s.Index, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode index: %w", err)
	}
	docs, err := json.MarshalIndent(s.Documents, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode documents: %w", err)
	}
	if err := p.Write(IndexFile, index); err != nil {
		return fmt.Errorf("artifact: write index: %w", err)
	}
	if err := p.Write(DocumentsFile, docs); err != nil {
		return fmt.Errorf("artifact: write documents: %w", err)
	}
	return nil
}

// Read loads both artifacts. Missing files are reported as
// apperr.ErrUnavailable; a missing or empty index is rebuilt from the list.
func Read(p storage.Provider) (*Snapshot, error) {
	docsRaw, err := p.Read(DocumentsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("artifact: %s: %w", DocumentsFile, apperr.ErrUnavailable)
		}
		return nil, err
	}
	var docs []models.Document
	if err := json.Unmarshal(docsRaw, &docs); err != nil {
		return nil, fmt.Errorf("artifact: decode documents: %w", err)
	}
	if docs == nil {
		docs = []models.Document{}
	}

	index := &models.ContentIndex{}
	indexRaw, err := p.Read(IndexFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		index = models.NewContentIndex(docs)
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(indexRaw, index); err != nil {
			return nil, fmt.Errorf("artifact: decode index: %w", err)
		}
		if index.Len() == 0 && len(docs) > 0 {
			index = models.NewContentIndex(docs)
		}
	}
	if index.Len() != len(docs) {
		return nil, fmt.Errorf("artifact: index holds %d documents, list holds %d", index.Len(), len(docs))
	}

	return build(index, docs)
}
