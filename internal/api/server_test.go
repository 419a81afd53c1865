package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/metrics"
	"webrag/internal/service"
)

type stubAnswerer struct {
	answer   service.Answer
	err      error
	healthy  error
	question string
}

func (s *stubAnswerer) Answer(_ context.Context, q string) (service.Answer, error) {
	s.question = q
	return s.answer, s.err
}

func (s *stubAnswerer) HealthCheck(context.Context) error { return s.healthy }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChat_Success(t *testing.T) {
	a := &stubAnswerer{answer: service.Answer{Text: "Fees are 5000.", Sources: []string{"https://u/fees"}, Confidence: 0.9}}
	rec := do(t, NewServer(a, Info{}, nil, nil), http.MethodPost, "/api/v1/chat", `{"question":"  What are the fees? "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	body := decode(t, rec)
	assert.Equal(t, "Fees are 5000.", body["answer"])
	assert.Equal(t, []any{"https://u/fees"}, body["sources"])
	assert.InDelta(t, 0.9, body["confidence"], 1e-9)
	assert.Equal(t, "What are the fees?", a.question)
}

func TestChat_NoContextIsNotAnError(t *testing.T) {
	a := &stubAnswerer{answer: service.Answer{Text: "fallback"}}
	rec := do(t, NewServer(a, Info{}, nil, nil), http.MethodPost, "/api/v1/chat", `{"question":"q"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []any{}, body["sources"])
	assert.Equal(t, 0.0, body["confidence"])
}

func TestChat_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"question":`},
		{"empty", `{"question":""}`},
		{"whitespace", `{"question":"   "}`},
		{"too long", `{"question":"` + strings.Repeat("a", MaxQuestionLength+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &stubAnswerer{}
			rec := do(t, NewServer(a, Info{}, nil, nil), http.MethodPost, "/api/v1/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, a.question)
		})
	}
}

func TestChat_FailureIsServerError(t *testing.T) {
	a := &stubAnswerer{err: errors.New("vector store down: secret detail")}
	rec := do(t, NewServer(a, Info{}, nil, nil), http.MethodPost, "/api/v1/chat", `{"question":"q"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, internalErrorDetail, body["detail"])
	assert.NotContains(t, rec.Body.String(), "secret detail")
	assert.NotContains(t, body, "answer")
}

func TestHealth(t *testing.T) {
	rec := do(t, NewServer(&stubAnswerer{}, Info{}, nil, nil), http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, StatusHealthy, decode(t, rec)["status"])

	rec = do(t, NewServer(&stubAnswerer{healthy: errors.New("down")}, Info{}, nil, nil), http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, StatusDegraded, decode(t, rec)["status"])

	rec = do(t, NewServer(nil, Info{}, nil, nil), http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, StatusUnhealthy, decode(t, rec)["status"])
}

func TestInfoAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.PageClassified("NEW")
	srv := NewServer(&stubAnswerer{}, Info{Name: "campus assistant", Version: "1.0.0"}, reg, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/info", "")
	body := decode(t, rec)
	assert.Equal(t, "campus assistant", body["name"])
	assert.Len(t, body["endpoints"], 3)

	rec = do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webrag_page_changes_total")

	rec = do(t, srv, http.MethodGet, "/api/v1/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
