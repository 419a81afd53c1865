// Package api serves the chat endpoints over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"webrag/internal/domain"
	"webrag/internal/service"
)

// MaxQuestionLength is the longest accepted question, in characters.
const MaxQuestionLength = 1000

// Health statuses reported by /api/v1/health.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

const internalErrorDetail = "Error processing your request. Please try again."

// Answerer is the question-answering backend behind the chat endpoint.
type Answerer interface {
	Answer(ctx context.Context, question string) (service.Answer, error)
	HealthCheck(ctx context.Context) error
}

// Info describes the deployment on /api/v1/info.
type Info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	Endpoints    []string `json:"endpoints"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

type ctxKey struct{}

// Server routes HTTP requests to the answerer.
type Server struct {
	answerer Answerer
	info     Info
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	router   *mux.Router
}

// NewServer wires the routes. A nil gatherer disables /metrics.
func NewServer(answerer Answerer, info Info, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if info.Endpoints == nil {
		info.Endpoints = []string{
			"/api/v1/health - Health check",
			"/api/v1/chat - Send a question",
			"/api/v1/info - This endpoint",
		}
	}
	s := &Server{answerer: answerer, info: info, gatherer: gatherer, logger: logger}

	r := mux.NewRouter()
	r.Use(s.requestID)
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", s.health).Methods(http.MethodGet)
	v1.HandleFunc("/chat", s.chat).Methods(http.MethodPost)
	v1.HandleFunc("/info", s.infoHandler).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.answerer == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: StatusUnhealthy, Message: "answer service not configured"})
		return
	}
	if err := s.answerer.HealthCheck(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusOK, healthResponse{Status: StatusDegraded, Message: "LLM service unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: StatusHealthy, Message: "All services operational"})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFrom(r.Context())
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body", RequestID: reqID})
		return
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question cannot be empty", RequestID: reqID})
		return
	}
	if utf8.RuneCountInString(req.Question) > MaxQuestionLength {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question is too long", RequestID: reqID})
		return
	}
	if s.answerer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: internalErrorDetail, RequestID: reqID})
		return
	}

	s.logger.Info("chat request", zap.String("request_id", reqID), zap.Int("question_chars", utf8.RuneCountInString(q)))
	ans, err := s.answerer.Answer(r.Context(), q)
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question cannot be empty", RequestID: reqID})
		return
	case err != nil:
		s.logger.Error("chat request failed", zap.String("request_id", reqID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: internalErrorDetail, RequestID: reqID})
		return
	}
	if ans.Sources == nil {
		ans.Sources = []string{}
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) infoHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
