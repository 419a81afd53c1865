package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"webrag/internal/domain"
)

// IntroductionTitle names content that precedes the first heading.
const IntroductionTitle = "Introduction"

// ContentTypeSemantic tags chunks produced by the semantic chunker.
const ContentTypeSemantic = "semantic"

var (
	headingRe   = regexp.MustCompile(`^#+\s+`)
	paragraphRe = regexp.MustCompile(`\n\n+`)
)

// SemanticChunker splits text into heading-delimited sections and packs each
// section's paragraphs into size-bounded chunks.
type SemanticChunker struct {
	minChunkSize     int
	maxChunkSize     int
	minParagraphSize int
}

// NewSemanticChunker creates a chunker using the size bounds of cfg.
func NewSemanticChunker(cfg Config) *SemanticChunker {
	cfg = cfg.withDefaults()
	return &SemanticChunker{
		minChunkSize:     cfg.MinChunkSize,
		maxChunkSize:     cfg.MaxChunkSize,
		minParagraphSize: cfg.MinParagraphSize,
	}
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitSections walks the lines of text, opening a new section at every
// markdown heading. Sections without any non-blank body are not emitted,
// except that non-empty text without headings is always one Introduction
// section. CRLF and CR line endings are treated as LF.
func SplitSections(text string) []domain.Section {
	if text == "" {
		return nil
	}
	text = lineEndings.Replace(text)
	var sections []domain.Section
	title := IntroductionTitle
	var body []string
	headings := false
	flush := func() {
		if len(body) == 0 {
			return
		}
		joined := strings.Join(body, "\n")
		if strings.TrimSpace(joined) != "" {
			sections = append(sections, domain.Section{Title: title, Body: joined})
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if headingRe.MatchString(line) {
			flush()
			title = strings.TrimSpace(strings.Trim(line, "#"))
			body = nil
			headings = true
			continue
		}
		body = append(body, line)
	}
	flush()
	if !headings && len(sections) == 0 {
		sections = append(sections, domain.Section{Title: IntroductionTitle, Body: text})
	}
	return sections
}

// ChunkBySemantics returns the chunks of text in document order. Ids are
// "{source}_{n}" with n counted across the whole document.
func (c *SemanticChunker) ChunkBySemantics(text, source string) []domain.Chunk {
	var chunks []domain.Chunk
	seq := 0
	for _, sec := range SplitSections(text) {
		paragraphs := splitParagraphs(sec.Body, c.minParagraphSize)
		packParagraphs(paragraphs, c.maxChunkSize, func(buf string) {
			if domain.CharLen(buf) < c.minChunkSize {
				return
			}
			id := chunkID(source, seq)
			seq++
			if IsNavigation(buf) {
				return
			}
			chunks = append(chunks, domain.NewChunk(id, buf, domain.Metadata{
				domain.MetaSection:     sec.Title,
				domain.MetaURL:         source,
				domain.MetaContentType: ContentTypeSemantic,
			}))
		})
	}
	return chunks
}

// splitParagraphs splits on blank lines, trims, and drops paragraphs shorter
// than minSize characters.
func splitParagraphs(body string, minSize int) []string {
	var out []string
	for _, p := range paragraphRe.Split(body, -1) {
		p = strings.TrimSpace(p)
		if p == "" || domain.CharLen(p) < minSize {
			continue
		}
		out = append(out, p)
	}
	return out
}

// packParagraphs greedily joins paragraphs with a blank line and calls emit
// with the buffer whenever the next paragraph would push it past maxSize,
// and once more at the end. A single paragraph longer than maxSize is
// emitted on its own.
func packParagraphs(paragraphs []string, maxSize int, emit func(string)) {
	current := ""
	for _, p := range paragraphs {
		candidate := p
		if current != "" {
			candidate = current + "\n\n" + p
		}
		if domain.CharLen(candidate) <= maxSize {
			current = candidate
			continue
		}
		if current != "" {
			emit(current)
		}
		current = p
	}
	if current != "" {
		emit(current)
	}
}

func chunkID(source string, seq int) string {
	return source + "_" + strconv.Itoa(seq)
}
