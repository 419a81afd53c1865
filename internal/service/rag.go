package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"webrag/internal/domain"
	"webrag/internal/llm"
	"webrag/internal/metrics"
)

// Answer is the externally visible result of one question.
type Answer struct {
	Text       string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// OrchestratorConfig holds the retrieval and generation settings.
type OrchestratorConfig struct {
	TopK           int
	Temperature    float64
	FallbackAnswer string
}

// Orchestrator answers questions from the indexed content.
type Orchestrator struct {
	embedder domain.Embedder
	store    domain.VectorStore
	llm      domain.LLM
	cfg      OrchestratorConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewOrchestrator(embedder domain.Embedder, store domain.VectorStore, model domain.LLM, cfg OrchestratorConfig, logger *zap.Logger, m *metrics.Metrics) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &Orchestrator{embedder: embedder, store: store, llm: model, cfg: cfg, logger: logger, metrics: m}
}

// Answer runs embed, retrieve, generate. An empty retrieval is not an
// error: it yields the fallback answer with no sources and zero confidence.
// Collaborator errors are returned wrapped and never retried.
func (o *Orchestrator) Answer(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, domain.ErrEmptyQuestion
	}
	start := time.Now()
	o.logger.Info("answering question", zap.String("question", question))

	vecs, err := o.embedder.Embed(ctx, []string{question})
	if err != nil {
		return o.fail(start, fmt.Errorf("embedding question: %w", err))
	}
	if len(vecs) != 1 {
		return o.fail(start, fmt.Errorf("embedding question: got %d vectors", len(vecs)))
	}
	result, err := o.store.Query(ctx, vecs[0], o.cfg.TopK)
	if err != nil {
		return o.fail(start, fmt.Errorf("retrieving context: %w", err))
	}
	if err := result.Validate(); err != nil {
		return o.fail(start, err)
	}
	if result.Len() == 0 {
		o.logger.Warn("no relevant context found", zap.String("question", question))
		o.metrics.Answered(metrics.OutcomeNoContext, 0, start)
		return Answer{Text: o.cfg.FallbackAnswer, Sources: []string{}, Confidence: 0}, nil
	}

	temp := float32(o.cfg.Temperature)
	text, err := o.llm.Generate(ctx, llm.BuildPrompt(question, result.Documents), domain.GenerateOptions{
		SystemInstruction: llm.SystemPrompt,
		Temperature:       &temp,
	})
	if err != nil {
		return o.fail(start, fmt.Errorf("generating answer: %w", err))
	}

	ans := Answer{
		Text:       text,
		Sources:    sources(result.Metadatas),
		Confidence: Confidence(result, o.cfg.TopK),
	}
	o.logger.Info("answer complete",
		zap.Float64("confidence", ans.Confidence),
		zap.Int("sources", len(ans.Sources)),
		zap.Duration("took", time.Since(start)))
	o.metrics.Answered(metrics.OutcomeAnswered, ans.Confidence, start)
	return ans, nil
}

// HealthCheck reports whether the answer generator is reachable.
func (o *Orchestrator) HealthCheck(ctx context.Context) error {
	return o.llm.HealthCheck(ctx)
}

func (o *Orchestrator) fail(start time.Time, err error) (Answer, error) {
	o.logger.Error("answer failed", zap.Error(err))
	o.metrics.Answered(metrics.OutcomeError, 0, start)
	return Answer{}, err
}

// sources returns the distinct non-empty url values, sorted.
func sources(metas []domain.Metadata) []string {
	seen := make(map[string]struct{}, len(metas))
	out := []string{}
	for _, m := range metas {
		u := m.String(domain.MetaURL)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
