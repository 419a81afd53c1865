package memory

import (
	"context"
	"sort"
	"sync"

	"webrag/internal/domain"
)

type entry struct {
	id       string
	document string
	vector   []float32
	metadata domain.Metadata
}

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Adding an existing id replaces the stored entry.
type Storage struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int
}

func NewStorage() *Storage { return &Storage{index: make(map[string]int)} }

func (s *Storage) Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []domain.Metadata) error {
	if err := domain.CheckBatch(ids, documents, embeddings, metadatas); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		e := entry{id: id, document: documents[i], vector: embeddings[i], metadata: metadatas[i].Clone()}
		if j, ok := s.index[id]; ok {
			s.entries[j] = e
			continue
		}
		s.index[id] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *Storage) Query(ctx context.Context, embedding []float32, topK int) (domain.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RetrievalResult{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	// vectors are assumed L2-normalized, so dot product is cosine similarity
	scores := make([]float64, len(s.entries))
	idxs := make([]int, len(s.entries))
	for i := range s.entries {
		scores[i] = cosine(s.entries[i].vector, embedding)
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	topK = min(topK, len(idxs))
	res := domain.RetrievalResult{
		Documents: make([]string, 0, topK),
		Metadatas: make([]domain.Metadata, 0, topK),
	}
	for _, j := range idxs[:topK] {
		res.Documents = append(res.Documents, s.entries[j].document)
		res.Metadatas = append(res.Metadatas, s.entries[j].metadata.Clone())
	}
	return res, nil
}

// Delete removes every entry whose metadata matches all pairs in where.
// An empty filter deletes nothing.
func (s *Storage) Delete(ctx context.Context, where map[string]string) error {
	if len(where) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.metadata.Matches(where) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.index = make(map[string]int, len(kept))
	for i, e := range kept {
		s.index[e.id] = i
	}
	return nil
}

// Len returns the number of stored entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
