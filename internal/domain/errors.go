package domain

import "errors"

var (
	// ErrMalformedChunk is returned when a chunk's size does not match its text.
	ErrMalformedChunk = errors.New("malformed chunk")
	// ErrMalformedSnapshot is returned for snapshot entries missing lastmod or hash.
	ErrMalformedSnapshot = errors.New("malformed snapshot entry")
	// ErrMalformedResult is returned when retrieval documents and metadatas are not index-aligned.
	ErrMalformedResult = errors.New("malformed retrieval result")
	// ErrEmptyQuestion is returned for empty or whitespace-only questions.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrEmptyCompletion is returned by LLM clients that received no text.
	ErrEmptyCompletion = errors.New("llm returned empty completion")
)

// ErrBatchMismatch is returned when VectorStore.Add slices differ in length.
var ErrBatchMismatch = errors.New("ids, documents, embeddings and metadatas differ in length")
