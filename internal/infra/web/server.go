package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-debate-orchestrator/internal/config"
	"ai-debate-orchestrator/internal/infra/logging"
	"ai-debate-orchestrator/internal/infra/metrics"
	red "ai-debate-orchestrator/internal/infra/redis"
	"ai-debate-orchestrator/internal/usecase"
)

type Server struct {
	debates   usecase.DebateUseCase
	templates usecase.TemplateUseCase
	auth      *AuthManager
	limiter   *red.RateLimiter // optional; nil disables interjection limiting
	apiKey    string
	port      int
	log       *zerolog.Logger

	srv *http.Server
}

func NewServer(
	cfg *config.ServerConfig,
	debates usecase.DebateUseCase,
	templates usecase.TemplateUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	webLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		debates:   debates,
		templates: templates,
		auth:      auth,
		limiter:   limiter,
		apiKey:    cfg.APIKey,
		port:      cfg.Port,
		log:       &webLog,
	}
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/auth/token", s.handleMintToken)

	r.Group(func(pr chi.Router) {
		pr.Use(s.authMiddleware)
		pr.Route("/api/v1/debates", func(dr chi.Router) {
			dr.Post("/", s.handleStartDebate)
			dr.Get("/{id}", s.handleGetDebate)
			dr.Post("/{id}/interjections", s.handleInterject)
			dr.Post("/{id}/cancel", s.handleCancel)
		})
		pr.Route("/api/v1/templates", func(tr chi.Router) {
			tr.Get("/", s.handleListTemplates)
			tr.Post("/", s.handleCreateTemplate)
			tr.Get("/{id}", s.handleGetTemplate)
			tr.Put("/{id}", s.handleUpdateTemplate)
			tr.Delete("/{id}", s.handleDeleteTemplate)
		})
	})
	return r
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Routes(),
	}
	s.log.Info().Int("port", s.port).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// authMiddleware accepts either the static API key or a minted JWT.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("api key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if bearerToken(r) == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleMintToken exchanges the static API key for a short-lived JWT, which
// EventSource clients can pass as a query parameter.
func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" || bearerToken(r) != s.apiKey {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, exp, err := s.auth.Mint()
	if err != nil {
		http.Error(w, "Failed to mint token", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// observe tags each request with a trace id and records latency per route.
// The recorder passes Flush through so SSE streaming keeps working under it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tid := uuid.NewString()
		w.Header().Set("X-Trace-Id", tid)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logging.WithTraceID(r.Context(), tid)))

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, r.Method, rec.code, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
