package chunker

import (
	"fmt"

	"go.uber.org/zap"

	"webrag/internal/domain"
)

// Strategy names accepted by NewStrategy.
const (
	StrategySemanticFiltered = "semantic_filtered"
	StrategyRawScored        = "raw_scored"
)

// Strategy turns one document's text into the final, scored chunk set.
// Implementations are stateless per call and safe for concurrent use.
type Strategy interface {
	Name() string
	Chunk(text, source string) []domain.Chunk
}

// NewStrategy returns the named strategy configured with cfg.
func NewStrategy(name string, cfg Config, logger *zap.Logger) (Strategy, error) {
	switch name {
	case StrategySemanticFiltered, "":
		return NewSemanticFiltered(cfg, logger), nil
	case StrategyRawScored:
		return NewRawScored(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy: %s", name)
	}
}

// SemanticFiltered runs navigation cleanup, semantic chunking, duplicate
// removal and quality scoring, keeping chunks at or above QualityThreshold.
type SemanticFiltered struct {
	cfg     Config
	chunker *SemanticChunker
	dedup   *DuplicateRemover
	logger  *zap.Logger
}

// NewSemanticFiltered creates the pipeline; a nil logger is allowed.
func NewSemanticFiltered(cfg Config, logger *zap.Logger) *SemanticFiltered {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &SemanticFiltered{
		cfg:     cfg,
		chunker: NewSemanticChunker(cfg),
		dedup:   NewDuplicateRemover(logger),
		logger:  logger,
	}
}

// Name returns the strategy identifier.
func (p *SemanticFiltered) Name() string { return StrategySemanticFiltered }

// Chunk produces the accepted chunks of text, each with quality_score set.
func (p *SemanticFiltered) Chunk(text, source string) []domain.Chunk {
	p.logger.Debug("chunking document", zap.String("source", source), zap.String("strategy", p.Name()))
	if p.cfg.FilterNavigation {
		text = FilterText(text)
	}
	chunks := p.chunker.ChunkBySemantics(text, source)
	if p.cfg.RemoveDuplicates {
		chunks = p.dedup.RemoveDuplicates(chunks)
	}
	accepted := make([]domain.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		score := ScoreChunk(ch, p.cfg)
		ch.Metadata[domain.MetaQualityScore] = score
		if score >= p.cfg.QualityThreshold {
			accepted = append(accepted, ch)
		}
	}
	p.logger.Info("chunking complete",
		zap.String("source", source),
		zap.Int("semantic_chunks", len(chunks)),
		zap.Int("accepted_chunks", len(accepted)))
	return accepted
}

// ChunkTextAdvanced chunks text with the default SemanticFiltered pipeline.
func ChunkTextAdvanced(text, sourceURL string) []domain.Chunk {
	return NewSemanticFiltered(DefaultConfig(), nil).Chunk(text, sourceURL)
}
