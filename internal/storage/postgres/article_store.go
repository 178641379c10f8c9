// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luukumag/article-preview/internal/article"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const articleColumns = `id::text, slug, title, excerpt, image_url, author, category, published_at, updated_at`

// ArticleStoreConfig controls the Postgres connection pool used for article reads.
type ArticleStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type queryCloser interface {
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// ArticleStore reads article rows from Postgres.
type ArticleStore struct {
	pool    queryCloser
	table   string
	queries map[article.Field]string
	tracer  trace.Tracer
}

// NewArticleStore creates a Postgres-backed ArticleStore using the provided config.
func NewArticleStore(ctx context.Context, cfg ArticleStoreConfig) (*ArticleStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	if cfg.Table != "" && !validTableName.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid table name %q", cfg.Table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewArticleStoreWithPool(pool, cfg.Table)
}

// NewArticleStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewArticleStoreWithPool(pool queryCloser, table string) (*ArticleStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	queries := make(map[article.Field]string, 2)
	for _, field := range []article.Field{article.FieldID, article.FieldSlug} {
		queries[field] = fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s = $1 LIMIT 1",
			articleColumns, table, field,
		)
	}
	return &ArticleStore{
		pool:    pool,
		table:   table,
		queries: queries,
		tracer:  otel.Tracer("github.com/luukumag/article-preview/internal/storage/postgres"),
	}, nil
}

// Find loads the first article whose id or slug equals key.Value.
func (s *ArticleStore) Find(ctx context.Context, key article.Key) (article.Article, error) {
	if s == nil || s.pool == nil {
		return article.Article{}, fmt.Errorf("article store is not configured")
	}
	query, ok := s.queries[key.Field]
	if !ok {
		return article.Article{}, fmt.Errorf("unsupported lookup field %q", key.Field)
	}
	ctx, span := s.tracer.Start(ctx, "article.find", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", s.table),
		attribute.String("article.lookup_field", string(key.Field)),
	))
	defer span.End()

	var a article.Article
	err := s.pool.QueryRow(ctx, query, key.Value).Scan(
		&a.ID,
		&a.Slug,
		&a.Title,
		&a.Excerpt,
		&a.ImageURL,
		&a.Author,
		&a.Category,
		&a.PublishedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return article.Article{}, article.ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return article.Article{}, fmt.Errorf("select article by %s: %w", key.Field, err)
	}
	return a, nil
}

// Ping checks connectivity to Postgres.
func (s *ArticleStore) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("article store is not configured")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *ArticleStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}
