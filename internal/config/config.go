package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"webrag/internal/chunker"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// GenAIEmbedderConfig holds configuration for Gemini embeddings.
type GenAIEmbedderConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	GenAI     *GenAIEmbedderConfig  `yaml:"genai,omitempty"`
}

// ChunkingConfig configures the chunking strategy and its thresholds.
type ChunkingConfig struct {
	Strategy            string   `yaml:"strategy"`
	MinChunkSize        int      `yaml:"min_chunk_size"`
	MaxChunkSize        int      `yaml:"max_chunk_size"`
	MinParagraphSize    int      `yaml:"min_paragraph_size"`
	RawMinParagraphSize int      `yaml:"raw_min_paragraph_size"`
	QualityThreshold    *float64 `yaml:"quality_threshold,omitempty"`
	RawQualityThreshold *float64 `yaml:"raw_quality_threshold,omitempty"`
	FilterNavigation    *bool    `yaml:"filter_navigation,omitempty"`
	RemoveDuplicates    *bool    `yaml:"remove_duplicates,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SQLiteConfig points at the database shared by the vector and state stores.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StateConfig selects where the change-detection snapshot lives.
type StateConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// LLMConfig selects and configures the answer generator.
type LLMConfig struct {
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	APIKeyEnv        string `yaml:"api_key_env"`
	MaxTokens        int    `yaml:"max_tokens"`
	SummarySentences int    `yaml:"summary_sentences"`
}

// RAGConfig configures retrieval and answer assembly.
type RAGConfig struct {
	TopK           int      `yaml:"top_k"`
	Temperature    *float64 `yaml:"temperature,omitempty"`
	FallbackAnswer string   `yaml:"fallback_answer"`
}

// IngestConfig locates crawled content and sizes the indexing batches.
type IngestConfig struct {
	Dir       string `yaml:"dir"`
	Registry  string `yaml:"registry"`
	BatchSize int    `yaml:"batch_size"`
	Workers   int    `yaml:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	State       StateConfig       `yaml:"state"`
	LLM         LLMConfig         `yaml:"llm"`
	RAG         RAGConfig         `yaml:"rag"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DefaultFallbackAnswer is returned when retrieval finds nothing.
const DefaultFallbackAnswer = "I don't have relevant information in the knowledge base to answer this question. " +
	"Please contact the organisation directly or visit its official website."

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/webrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/webrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown implementation names and inconsistent bounds.
func (c *AppConfig) Validate() error {
	if !oneOf(c.Chunking.Strategy, chunker.StrategySemanticFiltered, chunker.StrategyRawScored) {
		return fmt.Errorf("unknown chunking strategy: %s", c.Chunking.Strategy)
	}
	if c.Chunking.MinChunkSize > c.Chunking.MaxChunkSize {
		return fmt.Errorf("min_chunk_size %d exceeds max_chunk_size %d", c.Chunking.MinChunkSize, c.Chunking.MaxChunkSize)
	}
	if !oneOf(c.Embedder.Type, "hashing", "openai", "genai") {
		return fmt.Errorf("unknown embedder: %s", c.Embedder.Type)
	}
	if !oneOf(c.VectorStore.Type, "memory", "qdrant", "sqlite") {
		return fmt.Errorf("unknown vector store: %s", c.VectorStore.Type)
	}
	if c.Embedder.Type == "openai" && c.Embedder.OpenAI == nil {
		return errors.New("openai embedder config missing")
	}
	if c.VectorStore.Type == "qdrant" && c.VectorStore.Qdrant == nil {
		return errors.New("qdrant config missing")
	}
	if !oneOf(c.State.Backend, "file", "sqlite") {
		return fmt.Errorf("unknown state backend: %s", c.State.Backend)
	}
	if !oneOf(c.LLM.Provider, "gemini", "extractive") {
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	for name, v := range map[string]*float64{
		"quality_threshold":     c.Chunking.QualityThreshold,
		"raw_quality_threshold": c.Chunking.RawQualityThreshold,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be within [0, 1], got %g", name, *v)
		}
	}
	if t := c.RAG.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("temperature must be within [0, 2], got %g", *t)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.RAG.TopK)
	}
	return nil
}

// ChunkerConfig converts the YAML section into the chunker's settings.
func (c *AppConfig) ChunkerConfig() chunker.Config {
	return chunker.Config{
		MinChunkSize:        c.Chunking.MinChunkSize,
		MaxChunkSize:        c.Chunking.MaxChunkSize,
		MinParagraphSize:    c.Chunking.MinParagraphSize,
		RawMinParagraphSize: c.Chunking.RawMinParagraphSize,
		QualityThreshold:    floatOr(c.Chunking.QualityThreshold, chunker.DefaultQualityThreshold),
		RawQualityThreshold: floatOr(c.Chunking.RawQualityThreshold, chunker.DefaultRawQualityThreshold),
		FilterNavigation:    boolOr(c.Chunking.FilterNavigation, true),
		RemoveDuplicates:    boolOr(c.Chunking.RemoveDuplicates, true),
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "webrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	ch := &cfg.Chunking
	if ch.Strategy == "" {
		ch.Strategy = chunker.StrategySemanticFiltered
	}
	if ch.MinChunkSize == 0 {
		ch.MinChunkSize = chunker.DefaultMinChunkSize
	}
	if ch.MaxChunkSize == 0 {
		ch.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if ch.MinParagraphSize == 0 {
		ch.MinParagraphSize = chunker.DefaultMinParagraphSize
	}
	if ch.RawMinParagraphSize == 0 {
		ch.RawMinParagraphSize = chunker.DefaultRawMinParagraphSize
	}
	if ch.QualityThreshold == nil {
		ch.QualityThreshold = floatPtr(chunker.DefaultQualityThreshold)
	}
	if ch.RawQualityThreshold == nil {
		ch.RawQualityThreshold = floatPtr(chunker.DefaultRawQualityThreshold)
	}
	if ch.FilterNavigation == nil {
		ch.FilterNavigation = boolPtr(true)
	}
	if ch.RemoveDuplicates == nil {
		ch.RemoveDuplicates = boolPtr(true)
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 512
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Embedder.Type == "genai" {
		if cfg.Embedder.GenAI == nil {
			cfg.Embedder.GenAI = &GenAIEmbedderConfig{}
		}
		if cfg.Embedder.GenAI.APIKeyEnv == "" {
			cfg.Embedder.GenAI.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Embedder.GenAI.Model == "" {
			cfg.Embedder.GenAI.Model = "gemini-embedding-001"
		}
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Qdrant != nil && cfg.VectorStore.Qdrant.Collection == "" {
		cfg.VectorStore.Qdrant.Collection = "web_knowledge"
	}
	if cfg.VectorStore.SQLite == nil {
		cfg.VectorStore.SQLite = &SQLiteConfig{}
	}
	if cfg.VectorStore.SQLite.Path == "" {
		cfg.VectorStore.SQLite.Path = "data/webrag.db"
	}

	if cfg.State.Backend == "" {
		cfg.State.Backend = "file"
	}
	if cfg.State.Path == "" {
		cfg.State.Path = "data/state_snapshot.json"
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "extractive"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.0-flash"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2048
	}
	if cfg.LLM.SummarySentences == 0 {
		cfg.LLM.SummarySentences = 5
	}

	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.Temperature == nil {
		cfg.RAG.Temperature = floatPtr(0.7)
	}
	if cfg.RAG.FallbackAnswer == "" {
		cfg.RAG.FallbackAnswer = DefaultFallbackAnswer
	}

	if cfg.Ingest.Dir == "" {
		cfg.Ingest.Dir = "data/raw_markdown"
	}
	if cfg.Ingest.Registry == "" {
		cfg.Ingest.Registry = "data/url_registry.json"
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 500
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 4
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func floatOr(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
