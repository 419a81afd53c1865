// Package llm holds the answer generators and the prompt format they share.
package llm

import (
	"fmt"
	"strings"
)

// NotFoundPhrase is the answer the model must give when the context lacks the information.
const NotFoundPhrase = "I do not have this information from the official website."

const (
	contextHeader  = "RELEVANT INFORMATION:"
	questionHeader = "USER QUESTION:"
	answerHeader   = "ANSWER:"
)

// SystemPrompt constrains the model to context-only answers.
const SystemPrompt = `You are an official AI assistant for this website.

Answer the user's question ONLY using the provided context.
Do not use external knowledge or assumptions.

IMPORTANT:
- If the answer is not present in the context, clearly say:
  "` + NotFoundPhrase + `"
- Be accurate, professional, and helpful.

FORMATTING GUIDELINES:
- Use short paragraphs for explanations.
- Use bullet points only when listing multiple items.
- Add headings only if they improve clarity.`

// BuildPrompt renders the retrieved chunks and the question into one prompt.
func BuildPrompt(question string, contexts []string) string {
	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString("\n")
	for i, c := range contexts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Context %d]\n%s", i+1, c)
	}
	b.WriteString("\n\n")
	b.WriteString(questionHeader)
	b.WriteString("\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(answerHeader)
	return b.String()
}

// ParsePrompt splits a prompt built by BuildPrompt back into its context
// text and question. ok is false for prompts in any other shape.
func ParsePrompt(prompt string) (context, question string, ok bool) {
	ci := strings.Index(prompt, contextHeader)
	qi := strings.LastIndex(prompt, questionHeader)
	ai := strings.LastIndex(prompt, answerHeader)
	if ci < 0 || qi < ci || ai < qi {
		return "", "", false
	}
	context = prompt[ci+len(contextHeader) : qi]
	question = strings.TrimSpace(prompt[qi+len(questionHeader) : ai])
	return strings.TrimSpace(context), question, true
}
