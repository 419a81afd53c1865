package chunker

import (
	"regexp"
	"strings"

	"webrag/internal/domain"
)

// ScoreChunk grades a chunk in [0,1] from its size, navigation signal,
// section metadata and truncation artifacts.
func ScoreChunk(ch domain.Chunk, cfg Config) float64 {
	cfg = cfg.withDefaults()
	score := 0.5
	if ch.Size < cfg.MinChunkSize {
		score -= 0.3
	}
	if ch.Size >= cfg.MinChunkSize && ch.Size <= cfg.MaxChunkSize {
		score += 0.2
	}
	if IsNavigation(ch.Text) {
		score -= 0.5
	}
	if ch.Metadata.String(domain.MetaSection) != "" {
		score += 0.1
	}
	if isTruncated(ch.Text) {
		score -= 0.2
	}
	return clamp01(score)
}

func isTruncated(text string) bool {
	for _, suffix := range []string{"tps://", "http", "..."} {
		if strings.HasSuffix(text, suffix) {
			return true
		}
	}
	return false
}

var (
	wordRe       = regexp.MustCompile(`\w+`)
	linkTargetRe = regexp.MustCompile(`\]\([^)]*\)`)
	httpLinkRe   = regexp.MustCompile(`\]\(https?://`)
)

// Raw scorer limits.
const (
	rawMinChars     = 50
	rawMaxChars     = 4000
	rawMinWords     = 10
	rawMaxLinkRatio = 0.4
	rawWordCap      = 400
)

// ScoreRaw grades uncleaned markdown by length, real-word count and link
// density. Words inside link targets are not counted.
func ScoreRaw(text string) float64 {
	text = strings.TrimSpace(text)
	n := domain.CharLen(text)
	if n < rawMinChars {
		return 0.0
	}
	if n > rawMaxChars {
		return 0.3
	}
	words := len(wordRe.FindAllString(linkTargetRe.ReplaceAllString(text, "]"), -1))
	if words < rawMinWords {
		return 0.2
	}
	links := len(httpLinkRe.FindAllString(text, -1))
	if float64(links) > float64(words)*rawMaxLinkRatio {
		return 0.2
	}
	return 0.6 + 0.4*float64(min(words, rawWordCap))/rawWordCap
}

func clamp01(v float64) float64 {
	return max(0.0, min(1.0, v))
}
