package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("What are the fees?", []string{"Fees are listed.", "Pay online."})
	want := "RELEVANT INFORMATION:\n[Context 1]\nFees are listed.\n\n[Context 2]\nPay online.\n\nUSER QUESTION:\nWhat are the fees?\n\nANSWER:"
	assert.Equal(t, want, got)
}

func TestParsePrompt(t *testing.T) {
	ctx, q, ok := ParsePrompt(BuildPrompt("Where is it?", []string{"On campus."}))
	assert.True(t, ok)
	assert.Equal(t, "[Context 1]\nOn campus.", ctx)
	assert.Equal(t, "Where is it?", q)

	_, _, ok = ParsePrompt("free text")
	assert.False(t, ok)
}

func TestSystemPromptCarriesFallbackPhrase(t *testing.T) {
	assert.Contains(t, SystemPrompt, NotFoundPhrase)
}
