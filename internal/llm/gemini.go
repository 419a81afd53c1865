package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"webrag/internal/domain"
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	// BaseURL overrides the API endpoint; empty uses the default.
	BaseURL string
	// BreakerFailures consecutive failures open the circuit for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Gemini generates answers with Google's Gemini API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewGemini creates a Gemini client. It is constructed once by the caller and
// injected wherever an LLM is needed.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gemini",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A blank answer or a cancelled request says nothing about the API's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrEmptyCompletion) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	logger.Info("gemini client initialized", zap.String("model", cfg.Model))
	return &Gemini{client: client, model: cfg.Model, maxTokens: int32(cfg.MaxOutputTokens), breaker: breaker, logger: logger}, nil
}

// Generate answers prompt. While the circuit is open it fails fast with an
// error wrapping gobreaker.ErrOpenState.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.generate(ctx, prompt, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("gemini unavailable: %w", err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	gc := &genai.GenerateContentConfig{Temperature: opts.Temperature}
	if g.maxTokens > 0 {
		gc.MaxOutputTokens = g.maxTokens
	}
	if opts.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		g.logger.Error("gemini generate failed", zap.Error(err))
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", domain.ErrEmptyCompletion
	}
	g.logger.Debug("gemini generate ok", zap.Int("chars", len(text)))
	return text, nil
}

// HealthCheck issues a minimal generation request.
func (g *Gemini) HealthCheck(ctx context.Context) error {
	_, err := g.Generate(ctx, "test", domain.GenerateOptions{})
	return err
}
