package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/chunker"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, chunker.StrategySemanticFiltered, cfg.Chunking.Strategy)
	assert.Equal(t, 100, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 2000, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "file", cfg.State.Backend)
	assert.Equal(t, DefaultFallbackAnswer, cfg.RAG.FallbackAnswer)
	assert.Equal(t, chunker.DefaultConfig(), cfg.ChunkerConfig())
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
chunking:
  strategy: raw_scored
  remove_duplicates: false
rag:
  top_k: 8
vector_store:
  type: qdrant
  qdrant:
    url: http://localhost:6333
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, chunker.StrategyRawScored, cfg.Chunking.Strategy)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, "web_knowledge", cfg.VectorStore.Qdrant.Collection)

	cc := cfg.ChunkerConfig()
	assert.False(t, cc.RemoveDuplicates)
	assert.True(t, cc.FilterNavigation)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"strategy":     "chunking:\n  strategy: fuzzy\n",
		"sizes":        "chunking:\n  min_chunk_size: 3000\n",
		"embedder":     "embedder:\n  type: word2vec\n",
		"openai":       "embedder:\n  type: openai\n",
		"qdrant":       "vector_store:\n  type: qdrant\n",
		"llm provider": "llm:\n  provider: gpt\n",
		"top k":        "rag:\n  top_k: -1\n",
		"threshold":    "chunking:\n  quality_threshold: 1.5\n",
		"temperature":  "rag:\n  temperature: -0.1\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_ExplicitZeroIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "chunking:\n  quality_threshold: 0\nrag:\n  temperature: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.RAG.Temperature)
	assert.Zero(t, *cfg.RAG.Temperature)
	assert.Zero(t, cfg.ChunkerConfig().QualityThreshold)
	assert.Equal(t, chunker.DefaultRawQualityThreshold, cfg.ChunkerConfig().RawQualityThreshold)

	defaults, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.InDelta(t, 0.7, *defaults.RAG.Temperature, 1e-9)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.RAG.TopK = 3
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
