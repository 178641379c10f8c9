package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luukumag/article-preview/internal/article"
	"github.com/luukumag/article-preview/internal/config"
	"github.com/luukumag/article-preview/internal/metrics"
	"github.com/luukumag/article-preview/internal/preview"
)

const readyTimeout = 2 * time.Second

// Server wires HTTP handlers to the preview resolver.
type Server struct {
	router   chi.Router
	resolver *preview.Resolver
	pinger   article.Pinger
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes. A nil pinger
// makes /readyz always report ready.
func NewServer(
	resolver *preview.Resolver,
	pinger article.Pinger,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		resolver: resolver,
		pinger:   pinger,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.GetHead)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/article", func(r chi.Router) {
		r.Get("/", s.articleWithoutID)
		r.Get("/{id}", s.articleByPath)
	})
	r.Get(cfg.Routes.EdgePath, s.articleByQuery)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) articleWithoutID(w http.ResponseWriter, r *http.Request) {
	s.preview(w, r, "")
}

func (s *Server) articleByPath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// chi matches on RawPath when the path carried escapes, otherwise on the decoded Path.
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(id); err == nil {
			id = decoded
		}
	}
	s.preview(w, r, id)
}

func (s *Server) articleByQuery(w http.ResponseWriter, r *http.Request) {
	s.preview(w, r, r.URL.Query().Get("id"))
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request, identifier string) {
	resp := s.resolver.Resolve(r.Context(), identifier, r.UserAgent())
	metrics.ObservePreview(string(resp.Outcome))
	if err := resp.Write(w); err != nil {
		s.logger.Warn("preview write failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestIDFromContext(r.Context())),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("error", rec),
						zap.String("request_id", requestIDFromContext(r.Context())),
					)
					if err := preview.ErrorResponse().Write(w); err != nil {
						logger.Warn("error page write failed", zap.Error(err))
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}
