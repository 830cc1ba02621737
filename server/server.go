// Package server is the chat backend the widget talks to. It answers
// POST /chat with a model reply and optionally serves the widget itself.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/internal/health"
	"github.com/linanwx/chatwidget/logger"
)

// maxRequestBytes bounds a /chat request body.
const maxRequestBytes = 64 << 10

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server routes HTTP requests to the responder and mounted handlers.
type Server struct {
	cfg       config.ServerConfig
	responder *Responder
	limiters  *limiterPool
	metrics   *metrics
	mux       *http.ServeMux
	startedAt time.Time
	sessions  atomic.Int64
}

// New creates a Server. Mount more handlers before calling Run.
func New(cfg config.ServerConfig, responder *Responder) *Server {
	s := &Server{
		cfg:       cfg,
		responder: responder,
		limiters:  newLimiterPool(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		metrics:   newMetrics(),
		mux:       http.NewServeMux(),
		startedAt: time.Now(),
	}
	s.mux.Handle("POST /chat", s.rateLimited(http.HandlerFunc(s.handleChat)))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if cfg.MetricsEnabled() {
		s.mux.Handle("GET /metrics", s.metrics.handler())
	}
	return s
}

// Mount registers h for pattern, e.g. the widget page and websocket.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// SessionOpened and SessionClosed track open widget sessions.
func (s *Server) SessionOpened() {
	s.sessions.Add(1)
	s.metrics.sessions.Inc()
}

func (s *Server) SessionClosed() {
	s.sessions.Add(-1)
	s.metrics.sessions.Dec()
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.cors(s.mux)
}

// Run serves on the configured address until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Slog().Handler(), slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("chat server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("chat server shutdown error", "err", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("chat server stopped")
	return nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := s.chat(w, r)
	s.metrics.observeRequest(status)
	logger.Info(
		"chat request",
		"remote", clientIP(r),
		"status", status,
		"latencyMs", time.Since(start).Milliseconds(),
	)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) int {
	var req ChatRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return writeError(w, http.StatusBadRequest, "empty request body")
		}
		return writeError(w, http.StatusBadRequest, "invalid JSON body")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return writeError(w, http.StatusBadRequest, "message is required")
	}

	providerStart := time.Now()
	reply, err := s.responder.Reply(r.Context(), message)
	switch {
	case errors.Is(err, ErrPromptTooLarge):
		return writeError(w, http.StatusRequestEntityTooLarge, "message is too long")
	case err != nil:
		s.metrics.observeProvider(time.Since(providerStart))
		logger.Error("provider failed", "err", err)
		return writeError(w, http.StatusBadGateway, "the assistant is unavailable")
	}
	s.metrics.observeProvider(time.Since(providerStart))

	writeJSON(w, http.StatusOK, ChatResponse{Response: reply})
	return http.StatusOK
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, health.Collect(health.Options{
		Provider:       s.responder.providerName,
		Model:          s.responder.modelName,
		StartedAt:      s.startedAt,
		ActiveSessions: int(s.sessions.Load()),
	}))
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !s.limiters.Allow(key) {
			s.metrics.observeRequest(http.StatusTooManyRequests)
			logger.Warn("chat request rate limited", "client", key)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(origin, s.cfg.AllowedOrigins) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "600")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) int {
	writeJSON(w, status, errorResponse{Error: msg})
	return status
}
