package service

import "webrag/internal/domain"

// Confidence scores a retrieval in [0,1]: 0 for no chunks, otherwise 0.5,
// plus 0.2 when retrieval returned at least topK chunks, plus up to 0.3 for
// the fraction of chunks whose metadata carries both url and section.
func Confidence(result domain.RetrievalResult, topK int) float64 {
	n := result.Len()
	if n == 0 {
		return 0
	}
	score := 0.5
	if n >= topK {
		score += 0.2
	}
	complete := 0
	for _, m := range result.Metadatas {
		if m.String(domain.MetaURL) != "" && m.String(domain.MetaSection) != "" {
			complete++
		}
	}
	score += 0.3 * float64(complete) / float64(max(len(result.Metadatas), 1))
	return min(1, max(0, score))
}
