package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/domain"
)

func fakeGemini(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": reply}},
				},
			}},
		})
	}))
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{}, nil)
	assert.Error(t, err)
}

func TestGemini_Generate(t *testing.T) {
	srv := fakeGemini(t, "  The fee is 5000.  ")
	defer srv.Close()
	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	temp := float32(0.7)
	got, err := g.Generate(context.Background(), "prompt", domain.GenerateOptions{SystemInstruction: SystemPrompt, Temperature: &temp})
	require.NoError(t, err)
	assert.Equal(t, "The fee is 5000.", got)
	assert.NoError(t, g.HealthCheck(context.Background()))
}

func TestGemini_EmptyCompletion(t *testing.T) {
	srv := fakeGemini(t, "   ")
	defer srv.Close()
	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "prompt", domain.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyCompletion)
}

func TestGemini_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()
	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "k", BaseURL: srv.URL, BreakerFailures: 2}, nil)
	require.NoError(t, err)

	for range 2 {
		_, err := g.Generate(context.Background(), "prompt", domain.GenerateOptions{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	before := calls.Load()
	_, err = g.Generate(context.Background(), "prompt", domain.GenerateOptions{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, calls.Load())
}

func TestGemini_EmptyCompletionKeepsCircuitClosed(t *testing.T) {
	srv := fakeGemini(t, "")
	defer srv.Close()
	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "k", BaseURL: srv.URL, BreakerFailures: 1}, nil)
	require.NoError(t, err)

	for range 3 {
		_, err := g.Generate(context.Background(), "prompt", domain.GenerateOptions{})
		assert.ErrorIs(t, err, domain.ErrEmptyCompletion)
	}
}
