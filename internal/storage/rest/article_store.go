// Package rest reads articles through the managed backend's PostgREST API,
// the same interface the hosted client library speaks.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luukumag/article-preview/internal/article"
)

const (
	selectColumns = "id,slug,title,excerpt,image_url,author,category,published_at,updated_at"
	maxErrorBody  = 512
)

// Config points the store at a backend project.
type Config struct {
	BaseURL string
	APIKey  string
	Table   string
	// Schema selects a non-default schema through Accept-Profile.
	Schema string
}

// ArticleStore queries the backend's REST endpoint for single articles.
type ArticleStore struct {
	endpoint string
	apiKey   string
	schema   string
	client   *http.Client
	tracer   trace.Tracer
}

// NewArticleStore validates cfg and builds a store. A nil client uses
// http.DefaultClient.
func NewArticleStore(cfg Config, client *http.Client) (*ArticleStore, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend.url is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("backend.api_key is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend.url %q", cfg.BaseURL)
	}
	table := cfg.Table
	if table == "" {
		table = "articles"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ArticleStore{
		endpoint: base.String() + "/rest/v1/" + url.PathEscape(table),
		apiKey:   cfg.APIKey,
		schema:   cfg.Schema,
		client:   client,
		tracer:   otel.Tracer("github.com/luukumag/article-preview/internal/storage/rest"),
	}, nil
}

// Find returns the first row whose field equals key.Value.
func (s *ArticleStore) Find(ctx context.Context, key article.Key) (article.Article, error) {
	if key.Field != article.FieldID && key.Field != article.FieldSlug {
		return article.Article{}, fmt.Errorf("unsupported lookup field %q", key.Field)
	}
	ctx, span := s.tracer.Start(ctx, "article.find", trace.WithAttributes(
		attribute.String("db.system", "postgrest"),
		attribute.String("article.lookup_field", string(key.Field)),
	))
	defer span.End()

	q := url.Values{}
	q.Set("select", selectColumns)
	q.Set(string(key.Field), "eq."+key.Value)
	q.Set("limit", "1")

	var rows []articleRow
	if err := s.get(ctx, q, &rows); err != nil {
		span.RecordError(err)
		return article.Article{}, fmt.Errorf("select article by %s: %w", key.Field, err)
	}
	if len(rows) == 0 {
		return article.Article{}, article.ErrNotFound
	}
	return rows[0].toArticle(), nil
}

// Ping issues an empty select to confirm the endpoint and key are usable.
func (s *ArticleStore) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "0")
	var rows []json.RawMessage
	if err := s.get(ctx, q, &rows); err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	return nil
}

// Close is a no-op; the HTTP client is owned by the caller.
func (s *ArticleStore) Close() {}

func (s *ArticleStore) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if s.schema != "" {
		req.Header.Set("Accept-Profile", s.schema)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request backend: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
