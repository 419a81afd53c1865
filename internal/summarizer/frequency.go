package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
type FrequencySummarizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Summarize returns a short summary by ranking sentences using token frequency.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	scores := s.score(sentences, nil)
	return s.pick(sentences, scores, maxSentences), nil
}

// SummarizeFocused ranks sentences by token frequency plus their overlap
// with query. It returns "" when no sentence shares a term with query.
func (s *FrequencySummarizer) SummarizeFocused(text, query string, maxSentences int) string {
	qset := s.tokenSet(query)
	if len(qset) == 0 {
		return ""
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 && strings.TrimSpace(text) != "" {
		sentences = []string{text}
	}
	var (
		kept  []string
		boost []float64
	)
	for _, sent := range sentences {
		if o := s.overlapOchiai(qset, sent); o > 0 {
			kept = append(kept, sent)
			boost = append(boost, o)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return s.pick(kept, s.score(kept, boost), maxSentences)
}

type scored struct {
	idx   int
	score float64
}

func (s *FrequencySummarizer) score(sentences []string, boost []float64) []scored {
	// Compute word frequencies
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	// Normalize frequencies
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		sscore := 0.0
		for _, tok := range toks {
			sscore += freq[tok]
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		if boost != nil {
			sscore += 2 * boost[i]
		}
		scores[i] = scored{i, sscore}
	}
	return scores
}

func (s *FrequencySummarizer) pick(sentences []string, scores []scored, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	maxSentences = min(maxSentences, len(scores))
	// Keep original order among selected
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

func (s *FrequencySummarizer) tokens(text string) []string {
	lower := strings.ToLower(text)
	return s.tokenPattern.FindAllString(lower, -1)
}

func (s *FrequencySummarizer) tokenSet(text string) map[string]struct{} {
	m := map[string]struct{}{}
	for _, t := range s.tokens(text) {
		if _, stop := s.stopwords[t]; stop {
			continue
		}
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai returns |A∩B| / sqrt(|A||B|) over distinct non-stopword tokens.
func (s *FrequencySummarizer) overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := s.tokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "how", "when", "where", "do", "does", "i", "my", "me", "you", "your", "there",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
