package chunker

import (
	"go.uber.org/zap"

	"webrag/internal/domain"
)

// ContentTypeRaw tags chunks produced by the RawScored strategy.
const ContentTypeRaw = "raw"

// RawScored chunks uncleaned markdown. It skips navigation paragraphs, packs
// the rest per section and keeps chunks whose ScoreRaw reaches
// RawQualityThreshold. The gate is stricter than SemanticFiltered because
// the input never went through FilterText.
type RawScored struct {
	cfg    Config
	dedup  *DuplicateRemover
	logger *zap.Logger
}

// NewRawScored creates the strategy; a nil logger is allowed.
func NewRawScored(cfg Config, logger *zap.Logger) *RawScored {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RawScored{cfg: cfg.withDefaults(), dedup: NewDuplicateRemover(logger), logger: logger}
}

// Name returns the strategy identifier.
func (r *RawScored) Name() string { return StrategyRawScored }

// Chunk produces the accepted chunks of text, each with quality_score set.
func (r *RawScored) Chunk(text, source string) []domain.Chunk {
	var chunks []domain.Chunk
	seq := 0
	for _, sec := range SplitSections(text) {
		var paragraphs []string
		for _, p := range splitParagraphs(sec.Body, r.cfg.RawMinParagraphSize) {
			if !IsNavigation(p) {
				paragraphs = append(paragraphs, p)
			}
		}
		packParagraphs(paragraphs, r.cfg.MaxChunkSize, func(buf string) {
			id := chunkID(source, seq)
			seq++
			score := ScoreRaw(buf)
			if score < r.cfg.RawQualityThreshold {
				return
			}
			chunks = append(chunks, domain.NewChunk(id, buf, domain.Metadata{
				domain.MetaSection:      sec.Title,
				domain.MetaURL:          source,
				domain.MetaContentType:  ContentTypeRaw,
				domain.MetaQualityScore: score,
			}))
		})
	}
	if r.cfg.RemoveDuplicates {
		chunks = r.dedup.RemoveDuplicates(chunks)
	}
	r.logger.Info("chunking complete",
		zap.String("source", source),
		zap.String("strategy", r.Name()),
		zap.Int("accepted_chunks", len(chunks)))
	return chunks
}
