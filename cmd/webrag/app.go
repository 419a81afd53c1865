package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"webrag/internal/changes"
	"webrag/internal/chunker"
	"webrag/internal/config"
	"webrag/internal/domain"
	"webrag/internal/embedding/genai"
	"webrag/internal/embedding/hashing"
	"webrag/internal/embedding/openai"
	"webrag/internal/llm"
	"webrag/internal/loader"
	"webrag/internal/logging"
	"webrag/internal/metrics"
	"webrag/internal/service"
	"webrag/internal/storage/sqlite"
	"webrag/internal/vectorstore/memory"
	"webrag/internal/vectorstore/qdrant"
)

// app holds the components assembled from one config file.
type app struct {
	cfg       *config.AppConfig
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	embedder  domain.Embedder
	store     domain.VectorStore
	snapshots domain.SnapshotStore
	strategy  chunker.Strategy
	db        *sqlite.Store
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(cfgPath)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a := &app{cfg: cfg, logger: logger, registry: reg, metrics: metrics.New(reg)}

	if a.strategy, err = chunker.NewStrategy(cfg.Chunking.Strategy, cfg.ChunkerConfig(), logger); err != nil {
		return nil, err
	}
	if a.embedder, err = a.newEmbedder(ctx); err != nil {
		a.close()
		return nil, err
	}
	if a.store, err = a.newVectorStore(); err != nil {
		a.close()
		return nil, err
	}
	if a.snapshots, err = a.newSnapshotStore(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("closing database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) sqliteDB() (*sqlite.Store, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := sqlite.Open(a.cfg.VectorStore.SQLite.Path)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) newEmbedder(ctx context.Context) (domain.Embedder, error) {
	ec := a.cfg.Embedder
	switch ec.Type {
	case "hashing":
		return hashing.NewEmbedder(ec.Dimension), nil
	case "openai":
		if ec.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   ec.OpenAI.BaseURL,
			APIKeyEnv: ec.OpenAI.APIKeyEnv,
			Model:     ec.OpenAI.Model,
			Timeout:   time.Duration(ec.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: ec.OpenAI.BatchSize,
		})
	case "genai":
		return genai.NewEmbedder(ctx, genai.Config{
			APIKey: os.Getenv(ec.GenAI.APIKeyEnv),
			Model:  ec.GenAI.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", ec.Type)
	}
}

func (a *app) newVectorStore() (domain.VectorStore, error) {
	vc := a.cfg.VectorStore
	switch vc.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "qdrant":
		return qdrant.NewStorage(qdrant.Config{
			URL:        vc.Qdrant.URL,
			APIKey:     vc.Qdrant.APIKey,
			Collection: vc.Qdrant.Collection,
			Timeout:    time.Duration(vc.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "sqlite":
		db, err := a.sqliteDB()
		if err != nil {
			return nil, err
		}
		return db.VectorStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vc.Type)
	}
}

func (a *app) newSnapshotStore() (domain.SnapshotStore, error) {
	switch a.cfg.State.Backend {
	case "file":
		return changes.NewFileStore(a.cfg.State.Path), nil
	case "sqlite":
		db, err := a.sqliteDB()
		if err != nil {
			return nil, err
		}
		return db.SnapshotStore(), nil
	default:
		return nil, fmt.Errorf("unknown state backend: %s", a.cfg.State.Backend)
	}
}

func (a *app) newLLM(ctx context.Context) (domain.LLM, error) {
	lc := a.cfg.LLM
	switch lc.Provider {
	case "gemini":
		return llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:          os.Getenv(lc.APIKeyEnv),
			Model:           lc.Model,
			MaxOutputTokens: lc.MaxTokens,
		}, a.logger)
	case "extractive":
		return llm.NewExtractive(lc.SummarySentences), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", lc.Provider)
	}
}

func (a *app) indexer() *service.Indexer {
	return service.NewIndexer(a.strategy, a.embedder, a.store, service.IndexerConfig{
		BatchSize: a.cfg.Ingest.BatchSize,
		Workers:   a.cfg.Ingest.Workers,
	}, a.logger, a.metrics)
}

func (a *app) updater() *service.Updater {
	return service.NewUpdater(a.snapshots, a.store, a.indexer(), a.logger, a.metrics)
}

// loadDocuments reads the ingest directory, attaching URLs from the
// registry when one exists.
func (a *app) loadDocuments() ([]domain.Document, error) {
	docs, err := loader.LoadDir(a.cfg.Ingest.Dir)
	if err != nil {
		return nil, err
	}
	entries, err := loader.LoadRegistry(a.cfg.Ingest.Registry)
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Info("no url registry, indexing files without urls", zap.String("registry", a.cfg.Ingest.Registry))
		return docs, nil
	}
	if err != nil {
		return nil, err
	}
	return loader.ApplyRegistry(docs, entries), nil
}

// orchestrator builds the answer service. The in-memory store starts empty
// in every process, so it is filled from the ingest directory first.
func (a *app) orchestrator(ctx context.Context) (*service.Orchestrator, error) {
	model, err := a.newLLM(ctx)
	if err != nil {
		return nil, err
	}
	if a.cfg.VectorStore.Type == "memory" {
		docs, err := a.loadDocuments()
		if err != nil {
			return nil, err
		}
		if _, err := a.indexer().Index(ctx, docs); err != nil {
			return nil, err
		}
	}
	return service.NewOrchestrator(a.embedder, a.store, model, service.OrchestratorConfig{
		TopK:           a.cfg.RAG.TopK,
		Temperature:    *a.cfg.RAG.Temperature,
		FallbackAnswer: a.cfg.RAG.FallbackAnswer,
	}, a.logger, a.metrics), nil
}
