package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"webrag/internal/domain"
)

func withSection(text, section string) domain.Chunk {
	meta := domain.Metadata{}
	if section != "" {
		meta[domain.MetaSection] = section
	}
	return domain.NewChunk("c", text, meta)
}

func TestScoreChunk(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name  string
		chunk domain.Chunk
		want  float64
	}{
		{"sized with section", withSection(prose("course", 80), "Courses"), 0.8},
		{"sized without section", withSection(prose("course", 80), ""), 0.7},
		{"too small with section", withSection(prose("course", 5), "Courses"), 0.3},
		{"empty", withSection("", ""), 0.2},
		{"oversized", withSection(prose("course", 500), "Courses"), 0.6},
		{"navigation and truncated", withSection(prose("course", 30)+" Read More ...", "News"), 0.1},
		{"truncated url", withSection(prose("course", 30)+" see https://", "News"), 0.6},
		{"clamped at zero", withSection("Read More http", ""), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreChunk(tt.chunk, cfg), 1e-9)
		})
	}
}

func TestScoreChunk_AlwaysInUnitRange(t *testing.T) {
	texts := []string{"", "x", "Read More", prose("a", 5000), "[a](b)", "logo png svg ..."}
	sizes := []int{0, 1, 99, 100, 2000, 2001, 100000}
	for _, text := range texts {
		for _, size := range sizes {
			for _, section := range []string{"", "S"} {
				ch := domain.Chunk{Text: text, Size: size, Metadata: domain.Metadata{domain.MetaSection: section}}
				s := ScoreChunk(ch, DefaultConfig())
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 1.0)
			}
		}
	}
}

func TestScoreRaw(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"too short", "short text", 0.0},
		{"few words", strings.Repeat("abcdefghij ", 9), 0.2},
		{"link heavy", strings.Repeat("[a](https://example.edu/page) ", 20), 0.2},
		{"too long", prose("word", 1000), 0.3},
		{"hundred words", prose("word", 100), 0.7},
		{"capped at four hundred", prose("word", 790), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreRaw(tt.text), 1e-9)
		})
	}
}
