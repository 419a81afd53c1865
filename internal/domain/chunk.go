package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Metadata keys shared by chunks, vector stores and the confidence scorer.
const (
	MetaSection      = "section"
	MetaURL          = "url"
	MetaSourceFile   = "source_file"
	MetaContentType  = "content_type"
	MetaQualityScore = "quality_score"
	MetaLastmod      = "lastmod"
)

// Metadata is the free-form mapping stored alongside each chunk.
type Metadata map[string]any

// String returns the value for key when it is a string, "" otherwise.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Clone returns a shallow copy.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Chunk is a contiguous unit of source text prepared for indexing.
// Size is the length of Text in characters.
type Chunk struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
	Size     int      `json:"size"`
}

// NewChunk builds a chunk whose Size matches Text.
func NewChunk(id, text string, meta Metadata) Chunk {
	return Chunk{ID: id, Text: text, Metadata: meta, Size: CharLen(text)}
}

// IsValid reports whether the trimmed text is at least minSize characters.
func (c Chunk) IsValid(minSize int) bool {
	return CharLen(strings.TrimSpace(c.Text)) >= minSize
}

// Validate rejects chunks whose recorded size disagrees with their text.
func (c Chunk) Validate() error {
	if n := CharLen(c.Text); n != c.Size {
		return fmt.Errorf("%w: %s has size %d, text length %d", ErrMalformedChunk, c.ID, c.Size, n)
	}
	return nil
}

// Section is a heading-delimited span of a document.
type Section struct {
	Title string
	Body  string
}

// CharLen counts characters, not bytes.
func CharLen(s string) int { return utf8.RuneCountInString(s) }

// RetrievalResult holds the index-aligned output of a single vector query.
type RetrievalResult struct {
	Documents []string
	Metadatas []Metadata
}

// Len returns the number of retrieved chunks.
func (r RetrievalResult) Len() int { return len(r.Documents) }

// Validate checks that documents and metadatas are index-aligned.
func (r RetrievalResult) Validate() error {
	if len(r.Documents) != len(r.Metadatas) {
		return fmt.Errorf("%w: %d documents, %d metadatas", ErrMalformedResult, len(r.Documents), len(r.Metadatas))
	}
	return nil
}

// CheckBatch verifies that the slices passed to VectorStore.Add are aligned.
func CheckBatch(ids, documents []string, embeddings [][]float32, metadatas []Metadata) error {
	n := len(ids)
	if len(documents) != n || len(embeddings) != n || len(metadatas) != n {
		return fmt.Errorf("%w: %d/%d/%d/%d", ErrBatchMismatch, n, len(documents), len(embeddings), len(metadatas))
	}
	return nil
}

// Matches reports whether every key in where has the same string value in m.
func (m Metadata) Matches(where map[string]string) bool {
	for k, v := range where {
		if m.String(k) != v {
			return false
		}
	}
	return true
}
