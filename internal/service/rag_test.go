package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/domain"
	"webrag/internal/llm"
	"webrag/internal/metrics"
)

const fallback = "no information"

func newOrchestrator(emb domain.Embedder, store domain.VectorStore, model domain.LLM) *Orchestrator {
	return NewOrchestrator(emb, store, model, OrchestratorConfig{TopK: 3, Temperature: 0.7, FallbackAnswer: fallback}, nil, metrics.New(prometheus.NewRegistry()))
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	emb := &fakeEmbedder{}
	o := newOrchestrator(emb, &fakeStore{}, &fakeLLM{})
	_, err := o.Answer(context.Background(), "   \n")
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
	assert.Empty(t, emb.calls)
}

func TestAnswer_EmptyRetrievalShortCircuits(t *testing.T) {
	model := &fakeLLM{reply: "unused"}
	o := newOrchestrator(&fakeEmbedder{}, &fakeStore{}, model)

	ans, err := o.Answer(context.Background(), "What are the hostel fees?")
	require.NoError(t, err)
	assert.Equal(t, fallback, ans.Text)
	assert.NotNil(t, ans.Sources)
	assert.Empty(t, ans.Sources)
	assert.Zero(t, ans.Confidence)
	assert.Zero(t, model.calls)
}

func TestAnswer_Generates(t *testing.T) {
	store := &fakeStore{result: domain.RetrievalResult{
		Documents: []string{"Fees are 5000.", "Rooms are shared.", "Apply online."},
		Metadatas: []domain.Metadata{
			{domain.MetaURL: "https://u/b", domain.MetaSection: "Fees"},
			{domain.MetaURL: "https://u/a", domain.MetaSection: "Rooms"},
			{domain.MetaURL: "https://u/b", domain.MetaSection: "Apply"},
		},
	}}
	model := &fakeLLM{reply: "The fee is 5000."}
	o := newOrchestrator(&fakeEmbedder{}, store, model)

	ans, err := o.Answer(context.Background(), "  What are the hostel fees? ")
	require.NoError(t, err)
	assert.Equal(t, "The fee is 5000.", ans.Text)
	assert.Equal(t, []string{"https://u/a", "https://u/b"}, ans.Sources)
	assert.InDelta(t, 1.0, ans.Confidence, 1e-9)

	assert.Equal(t, 3, store.topK)
	assert.Equal(t, llm.SystemPrompt, model.opts.SystemInstruction)
	require.NotNil(t, model.opts.Temperature)
	assert.InDelta(t, 0.7, *model.opts.Temperature, 1e-6)
	assert.Contains(t, model.prompt, "[Context 3]\nApply online.")
	assert.Contains(t, model.prompt, "USER QUESTION:\nWhat are the hostel fees?")
}

func TestAnswer_SourcesSkipMissingURL(t *testing.T) {
	store := &fakeStore{result: domain.RetrievalResult{
		Documents: []string{"a", "b"},
		Metadatas: []domain.Metadata{{domain.MetaSourceFile: "a.md"}, {domain.MetaURL: ""}},
	}}
	ans, err := newOrchestrator(&fakeEmbedder{}, store, &fakeLLM{reply: "x"}).Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ans.Sources)
	assert.InDelta(t, 0.5, ans.Confidence, 1e-9)
}

func TestAnswer_CollaboratorErrorsPropagate(t *testing.T) {
	ok := domain.RetrievalResult{Documents: []string{"d"}, Metadatas: []domain.Metadata{{}}}
	tests := []struct {
		name  string
		emb   *fakeEmbedder
		store *fakeStore
		model *fakeLLM
		want  error
	}{
		{"embedder", &fakeEmbedder{err: errBoom}, &fakeStore{result: ok}, &fakeLLM{reply: "x"}, errBoom},
		{"store", &fakeEmbedder{}, &fakeStore{err: errBoom}, &fakeLLM{reply: "x"}, errBoom},
		{"llm", &fakeEmbedder{}, &fakeStore{result: ok}, &fakeLLM{err: domain.ErrEmptyCompletion}, domain.ErrEmptyCompletion},
		{"misaligned result", &fakeEmbedder{}, &fakeStore{result: domain.RetrievalResult{Documents: []string{"d"}}}, &fakeLLM{reply: "x"}, domain.ErrMalformedResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans, err := newOrchestrator(tt.emb, tt.store, tt.model).Answer(context.Background(), "q")
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, ans.Text)
		})
	}
}

func TestOrchestrator_HealthCheck(t *testing.T) {
	assert.NoError(t, newOrchestrator(&fakeEmbedder{}, &fakeStore{}, &fakeLLM{}).HealthCheck(context.Background()))
	assert.ErrorIs(t, newOrchestrator(&fakeEmbedder{}, &fakeStore{}, &fakeLLM{err: errBoom}).HealthCheck(context.Background()), errBoom)
}
