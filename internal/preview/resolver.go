package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/luukumag/article-preview/internal/article"
	"github.com/luukumag/article-preview/internal/metrics"
)

// Header values shared by the preview responses.
const (
	ContentTypeHTML     = "text/html; charset=utf-8"
	ContentTypePlain    = "text/plain; charset=utf-8"
	CrawlerCacheControl = "s-maxage=3600, stale-while-revalidate=86400"

	missingIDBody = "Article ID required"
)

// Outcome labels the branch a request took.
type Outcome string

// Resolver outcomes.
const (
	OutcomeMissingID Outcome = "missing_id"
	OutcomeRedirect  Outcome = "redirect"
	OutcomeRendered  Outcome = "rendered"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeError     Outcome = "error"
)

// Response is a fully rendered HTTP response.
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	Outcome Outcome
}

// Write copies the response onto w.
func (r Response) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.Status)
	if _, err := w.Write(r.Body); err != nil {
		return fmt.Errorf("write preview response: %w", err)
	}
	return nil
}

// Resolver turns (identifier, user agent) pairs into responses. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	finder article.Finder
	site   Site
	logger *zap.Logger
	tracer trace.Tracer
}

// NewResolver constructs a Resolver backed by finder.
func NewResolver(finder article.Finder, site Site, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		finder: finder,
		site:   site,
		logger: logger,
		tracer: otel.Tracer("github.com/luukumag/article-preview/internal/preview"),
	}
}

// Resolve produces the response for a single preview request. It never
// panics and never returns a partial document.
func (r *Resolver) Resolve(ctx context.Context, identifier, userAgent string) Response {
	ctx, span := r.tracer.Start(ctx, "preview.resolve")
	defer span.End()

	resp := r.resolve(ctx, identifier, userAgent)
	span.SetAttributes(
		attribute.String("preview.outcome", string(resp.Outcome)),
		attribute.Int("http.status_code", resp.Status),
	)
	if resp.Outcome == OutcomeError {
		span.SetStatus(codes.Error, "preview failed")
	}
	return resp
}

func (r *Resolver) resolve(ctx context.Context, identifier, userAgent string) Response {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return plain(http.StatusBadRequest, OutcomeMissingID, missingIDBody)
	}
	if !IsCrawler(userAgent) {
		body, err := renderRedirect(identifier)
		if err != nil {
			r.logger.Error("redirect render failed", zap.String("identifier", identifier), zap.Error(err))
			return ErrorResponse()
		}
		return html(http.StatusOK, OutcomeRedirect, body)
	}
	return r.crawler(ctx, identifier, userAgent)
}

func (r *Resolver) crawler(ctx context.Context, identifier, userAgent string) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("preview panic recovered",
				zap.String("identifier", identifier),
				zap.Any("panic", rec),
			)
			resp = ErrorResponse()
		}
	}()

	key := article.KeyFor(identifier)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Bool("preview.crawler", true),
		attribute.String("article.lookup_field", string(key.Field)),
	)

	a, err := r.finder.Find(ctx, key)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			metrics.ObserveLookup(string(key.Field), "not_found")
			r.logger.Info("article not found",
				zap.Stringer("key", key),
				zap.String("user_agent", userAgent),
			)
		} else {
			metrics.ObserveLookup(string(key.Field), "error")
			r.logger.Warn("article lookup failed",
				zap.Stringer("key", key),
				zap.Error(err),
			)
		}
		return html(http.StatusNotFound, OutcomeNotFound, []byte(notFoundPage))
	}
	metrics.ObserveLookup(string(key.Field), "found")

	body, err := renderArticle(BuildMeta(a, r.site))
	if err != nil {
		r.logger.Error("preview render failed", zap.String("article_id", a.ID), zap.Error(err))
		return ErrorResponse()
	}
	resp = html(http.StatusOK, OutcomeRendered, body)
	resp.Header.Set("Cache-Control", CrawlerCacheControl)
	return resp
}

func html(status int, outcome Outcome, body []byte) Response {
	h := make(http.Header)
	h.Set("Content-Type", ContentTypeHTML)
	return Response{Status: status, Header: h, Body: body, Outcome: outcome}
}

func plain(status int, outcome Outcome, body string) Response {
	h := make(http.Header)
	h.Set("Content-Type", ContentTypePlain)
	return Response{Status: status, Header: h, Body: []byte(body), Outcome: outcome}
}

// ErrorResponse is the static 500 page served for any unexpected failure.
func ErrorResponse() Response {
	return html(http.StatusInternalServerError, OutcomeError, []byte(errorPage))
}
