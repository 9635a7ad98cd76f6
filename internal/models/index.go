package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContentIndex maps chapter -> section -> ordered documents.
//
// Key order is insertion order, which for an ingestion pass equals the
// traversal order of the content tree. The zero value is an empty index.
type ContentIndex struct {
	chapters []string
	sections map[string][]string
	docs     map[string]map[string][]Document
}

// NewContentIndex builds an index from docs in the given order.
func NewContentIndex(docs []Document) *ContentIndex {
	ix := &ContentIndex{}
	for _, d := range docs {
		ix.Add(d)
	}
	return ix
}

// Add appends d to the list at (d.Chapter, d.Section), creating the
// intermediate buckets on first use.
func (ix *ContentIndex) Add(d Document) {
	ix.ensureSection(d.Chapter, d.Section)
	ix.docs[d.Chapter][d.Section] = append(ix.docs[d.Chapter][d.Section], d)
}

func (ix *ContentIndex) ensureChapter(chapter string) {
	if ix.docs == nil {
		ix.docs = make(map[string]map[string][]Document)
		ix.sections = make(map[string][]string)
	}
	if _, ok := ix.docs[chapter]; !ok {
		ix.docs[chapter] = make(map[string][]Document)
		ix.chapters = append(ix.chapters, chapter)
	}
}

func (ix *ContentIndex) ensureSection(chapter, section string) {
	ix.ensureChapter(chapter)
	if _, ok := ix.docs[chapter][section]; !ok {
		ix.docs[chapter][section] = nil
		ix.sections[chapter] = append(ix.sections[chapter], section)
	}
}

// Chapters returns chapter codes in insertion order.
func (ix *ContentIndex) Chapters() []string {
	if ix == nil {
		return nil
	}
	return append([]string(nil), ix.chapters...)
}

// Sections returns the section keys of chapter in insertion order.
func (ix *ContentIndex) Sections(chapter string) []string {
	if ix == nil {
		return nil
	}
	return append([]string(nil), ix.sections[chapter]...)
}

// Documents returns the list stored at (chapter, section), or nil.
func (ix *ContentIndex) Documents(chapter, section string) []Document {
	if ix == nil || ix.docs == nil {
		return nil
	}
	return ix.docs[chapter][section]
}

// Lookup returns the document with slug in the (chapter, section) bucket.
func (ix *ContentIndex) Lookup(chapter, section, slug string) (Document, bool) {
	for _, d := range ix.Documents(chapter, section) {
		if d.Slug == slug {
			return d, true
		}
	}
	return Document{}, false
}

// Len returns the number of documents across all buckets.
func (ix *ContentIndex) Len() int {
	if ix == nil {
		return 0
	}
	n := 0
	for _, ch := range ix.chapters {
		for _, sec := range ix.sections[ch] {
			n += len(ix.docs[ch][sec])
		}
	}
	return n
}

// MarshalJSON encodes the index as nested objects whose keys keep insertion order.
func (ix *ContentIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ch := range ix.Chapters() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, ch); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, sec := range ix.sections[ch] {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, sec); err != nil {
				return nil, err
			}
			list := ix.docs[ch][sec]
			if list == nil {
				list = []Document{}
			}
			raw, err := json.Marshal(list)
			if err != nil {
				return nil, err
			}
			buf.Write(raw)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(raw)
	buf.WriteByte(':')
	return nil
}

// UnmarshalJSON decodes the nested-object form, preserving key order.
func (ix *ContentIndex) UnmarshalJSON(data []byte) error {
	*ix = ContentIndex{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		chapter, err := readKey(dec)
		if err != nil {
			return err
		}
		ix.ensureChapter(chapter)
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			section, err := readKey(dec)
			if err != nil {
				return err
			}
			var list []Document
			if err := dec.Decode(&list); err != nil {
				return fmt.Errorf("models: decode %s/%s: %w", chapter, section, err)
			}
			ix.ensureSection(chapter, section)
			ix.docs[chapter][section] = append(ix.docs[chapter][section], list...)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("models: decode index: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("models: decode index: expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("models: decode index: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("models: decode index: expected key, got %v", tok)
	}
	return key, nil
}
