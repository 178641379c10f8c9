// Package storage selects and opens the article backend configured for the service.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/luukumag/article-preview/internal/article"
	"github.com/luukumag/article-preview/internal/config"
	"github.com/luukumag/article-preview/internal/storage/memory"
	"github.com/luukumag/article-preview/internal/storage/postgres"
	"github.com/luukumag/article-preview/internal/storage/rest"
)

// Provider is an article backend that can report readiness and release its resources.
type Provider interface {
	article.Finder
	article.Pinger
	Close()
}

const restTimeout = 5 * time.Second

// Open builds the Provider selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		logger.Info("Connecting to PostgreSQL", zap.String("table", cfg.DB.Table))
		store, err := postgres.NewArticleStore(ctx, postgres.ArticleStoreConfig{
			DSN:             cfg.DB.DSN,
			Table:           cfg.DB.Table,
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: time.Duration(cfg.DB.MaxConnLifetimeSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		return store, nil
	case config.DriverREST:
		logger.Info("Using backend REST store", zap.String("url", cfg.Backend.URL), zap.String("table", cfg.Backend.Table))
		store, err := rest.NewArticleStore(rest.Config{
			BaseURL: cfg.Backend.URL,
			APIKey:  cfg.Backend.APIKey,
			Table:   cfg.Backend.Table,
			Schema:  cfg.Backend.Schema,
		}, &http.Client{Timeout: restTimeout})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize rest store: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		if cfg.Store.SeedFile == "" {
			logger.Warn("Using empty in-memory store. Every crawler lookup will miss.")
			return memory.NewArticleStore(), nil
		}
		store, err := memory.LoadFile(cfg.Store.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory store: %w", err)
		}
		logger.Info("Using in-memory store", zap.String("seed_file", cfg.Store.SeedFile), zap.Int("articles", store.Len()))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
