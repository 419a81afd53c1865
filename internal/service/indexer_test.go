package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/chunker"
	"webrag/internal/domain"
	"webrag/internal/embedding/hashing"
)

func testDocs() []domain.Document {
	return []domain.Document{
		{
			URL:        "https://example.edu/hostel",
			SourceFile: "example.edu_hostel.md",
			Lastmod:    "2024-05-01",
			Content:    page("Hostel", "Students can apply for hostel rooms through the campus portal before the semester starts."),
		},
		{
			SourceFile: "handbook.md",
			Content:    page("Library", "The central library lends books to registered students for two weeks at a time."),
		},
	}
}

func newTestIndexer(emb domain.Embedder, store domain.VectorStore, batch int) *Indexer {
	return NewIndexer(chunker.NewSemanticFiltered(chunker.DefaultConfig(), nil), emb, store, IndexerConfig{BatchSize: batch, Workers: 2}, nil, nil)
}

func TestIndexer_ChunkDocumentsAttachesMetadata(t *testing.T) {
	ix := newTestIndexer(&fakeEmbedder{}, newRecordingStore(), 10)
	chunks, err := ix.ChunkDocuments(context.Background(), testDocs())
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	hostel := chunks[0]
	assert.Equal(t, "https://example.edu/hostel_0", hostel.ID)
	assert.Equal(t, "https://example.edu/hostel", hostel.Metadata.String(domain.MetaURL))
	assert.Equal(t, "example.edu_hostel.md", hostel.Metadata.String(domain.MetaSourceFile))
	assert.Equal(t, "2024-05-01", hostel.Metadata.String(domain.MetaLastmod))
	assert.Equal(t, "Hostel", hostel.Metadata.String(domain.MetaSection))

	library := chunks[1]
	assert.Equal(t, "handbook.md_0", library.ID)
	_, hasURL := library.Metadata[domain.MetaURL]
	assert.False(t, hasURL)
	assert.Equal(t, "handbook.md", library.Metadata.String(domain.MetaSourceFile))
	_, hasLastmod := library.Metadata[domain.MetaLastmod]
	assert.False(t, hasLastmod)
}

func TestIndexer_IndexBatches(t *testing.T) {
	emb := &fakeEmbedder{}
	store := newRecordingStore()
	n, err := newTestIndexer(emb, store, 1).Index(context.Background(), testDocs())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, emb.calls, 2)
	assert.Equal(t, 2, store.Len())
}

func TestIndexer_RetrievesWithHashingEmbedder(t *testing.T) {
	ctx := context.Background()
	emb := hashing.NewEmbedder(256)
	store := newRecordingStore()
	_, err := newTestIndexer(emb, store, 500).Index(ctx, testDocs())
	require.NoError(t, err)

	vecs, err := emb.Embed(ctx, []string{"apply for hostel rooms"})
	require.NoError(t, err)
	res, err := store.Query(ctx, vecs[0], 1)
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "Hostel", res.Metadatas[0].String(domain.MetaSection))
}

func TestIndexer_EmbedderError(t *testing.T) {
	_, err := newTestIndexer(&fakeEmbedder{err: errBoom}, newRecordingStore(), 10).Index(context.Background(), testDocs())
	assert.ErrorIs(t, err, errBoom)
}

func TestIndexer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestIndexer(&fakeEmbedder{}, newRecordingStore(), 10).ChunkDocuments(ctx, testDocs())
	assert.ErrorIs(t, err, context.Canceled)
}
