package llm

import (
	"context"
	"regexp"
	"strings"

	"webrag/internal/domain"
	"webrag/internal/summarizer"
)

var contextLabelRe = regexp.MustCompile(`(?m)^\[Context \d+\]\s*$`)

// Extractive answers offline by selecting the context sentences that best
// match the question. It never invents text outside the prompt context.
type Extractive struct {
	summarizer   *summarizer.FrequencySummarizer
	maxSentences int
}

func NewExtractive(maxSentences int) *Extractive {
	return &Extractive{summarizer: summarizer.NewFrequencySummarizer(), maxSentences: maxSentences}
}

func (e *Extractive) Generate(ctx context.Context, prompt string, _ domain.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, question, ok := ParsePrompt(prompt)
	if !ok {
		text, question = prompt, prompt
	}
	text = contextLabelRe.ReplaceAllString(text, "")
	// sentence splitting needs a terminator at paragraph ends
	text = strings.ReplaceAll(text, "\n\n", ".\n\n")
	answer := e.summarizer.SummarizeFocused(text, question, e.maxSentences)
	if answer == "" {
		return NotFoundPhrase, nil
	}
	return answer, nil
}

func (e *Extractive) HealthCheck(ctx context.Context) error { return ctx.Err() }
