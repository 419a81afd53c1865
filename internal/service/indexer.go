package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"webrag/internal/chunker"
	"webrag/internal/domain"
	"webrag/internal/metrics"
)

// IndexerConfig tunes batch sizes and chunking parallelism.
type IndexerConfig struct {
	BatchSize int
	Workers   int
}

// Indexer chunks documents and writes their embeddings to the vector store.
type Indexer struct {
	strategy chunker.Strategy
	embedder domain.Embedder
	store    domain.VectorStore
	cfg      IndexerConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewIndexer(strategy chunker.Strategy, embedder domain.Embedder, store domain.VectorStore, cfg IndexerConfig, logger *zap.Logger, m *metrics.Metrics) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Indexer{strategy: strategy, embedder: embedder, store: store, cfg: cfg, logger: logger, metrics: m}
}

// ChunkDocuments chunks docs concurrently and returns all chunks in
// document order, with source_file and lastmod attached.
func (ix *Indexer) ChunkDocuments(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	perDoc := make([][]domain.Chunk, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks := ix.strategy.Chunk(doc.Content, doc.Source())
			for _, ch := range chunks {
				attachDocument(ch.Metadata, doc)
			}
			perDoc[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []domain.Chunk
	for _, chunks := range perDoc {
		all = append(all, chunks...)
	}
	ix.metrics.ChunksAccepted(ix.strategy.Name(), len(all))
	return all, nil
}

func attachDocument(meta domain.Metadata, doc domain.Document) {
	if doc.URL == "" {
		delete(meta, domain.MetaURL)
	} else {
		meta[domain.MetaURL] = doc.URL
	}
	if doc.SourceFile != "" {
		meta[domain.MetaSourceFile] = doc.SourceFile
	}
	if doc.Lastmod != "" {
		meta[domain.MetaLastmod] = doc.Lastmod
	}
}

// Index chunks docs, embeds the chunks in batches and adds them to the store.
// It returns the number of chunks written.
func (ix *Indexer) Index(ctx context.Context, docs []domain.Document) (int, error) {
	chunks, err := ix.ChunkDocuments(ctx, docs)
	if err != nil {
		return 0, err
	}
	for start := 0; start < len(chunks); start += ix.cfg.BatchSize {
		batch := chunks[start:min(start+ix.cfg.BatchSize, len(chunks))]
		if err := ix.addBatch(ctx, batch); err != nil {
			return start, err
		}
		ix.logger.Debug("indexed batch", zap.Int("from", start), zap.Int("size", len(batch)))
	}
	ix.logger.Info("indexing complete",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
		zap.String("embedder", ix.embedder.Name()))
	return len(chunks), nil
}

func (ix *Indexer) addBatch(ctx context.Context, batch []domain.Chunk) error {
	ids := make([]string, len(batch))
	texts := make([]string, len(batch))
	metas := make([]domain.Metadata, len(batch))
	for i, ch := range batch {
		if err := ch.Validate(); err != nil {
			return err
		}
		ids[i], texts[i], metas[i] = ch.ID, ch.Text, ch.Metadata
	}
	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if err := ix.store.Add(ctx, ids, texts, vecs, metas); err != nil {
		return fmt.Errorf("adding chunks: %w", err)
	}
	return nil
}
