package domain

import "context"

// Document represents a single scraped page or file loaded into the system.
type Document struct {
	URL        string
	SourceFile string
	Lastmod    string
	Content    string
}

// Source returns the identifier used for chunk ids and metadata: the URL
// when known, otherwise the file name.
func (d Document) Source() string {
	if d.URL != "" {
		return d.URL
	}
	return d.SourceFile
}

// Embedder converts free text into numeric vectors, one per input, same order.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore persists chunk vectors and supports similarity search.
// Query returns at most topK index-aligned documents and metadatas.
type VectorStore interface {
	Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []Metadata) error
	Query(ctx context.Context, embedding []float32, topK int) (RetrievalResult, error)
	Delete(ctx context.Context, where map[string]string) error
}

// GenerateOptions carries the optional arguments of an LLM call.
type GenerateOptions struct {
	SystemInstruction string
	// Temperature is nil when the model default should be used.
	Temperature *float32
}

// LLM generates text. A failed call returns an error, never an empty answer.
type LLM interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	HealthCheck(ctx context.Context) error
}

// SnapshotStore reads and wholesale-replaces the persisted change snapshot.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
