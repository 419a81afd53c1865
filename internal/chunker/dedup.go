package chunker

import (
	"go.uber.org/zap"

	"webrag/internal/digest"
	"webrag/internal/domain"
)

// DuplicateRemover drops chunks whose normalized text was already seen.
// Only exact matches after whitespace collapse and lowercasing count.
type DuplicateRemover struct {
	logger *zap.Logger
}

// NewDuplicateRemover creates a remover; a nil logger is allowed.
func NewDuplicateRemover(logger *zap.Logger) *DuplicateRemover {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateRemover{logger: logger}
}

// RemoveDuplicates keeps the first occurrence of every fingerprint, in order.
func (r *DuplicateRemover) RemoveDuplicates(chunks []domain.Chunk) []domain.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	unique := make([]domain.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		fp := digest.Fingerprint(ch.Text)
		if _, ok := seen[fp]; ok {
			r.logger.Debug("removed duplicate chunk", zap.String("chunk_id", ch.ID))
			continue
		}
		seen[fp] = struct{}{}
		unique = append(unique, ch)
	}
	return unique
}
