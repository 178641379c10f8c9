// Package server builds the application's dependencies and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/luukumag/article-preview/internal/api"
	"github.com/luukumag/article-preview/internal/article"
	cacheredis "github.com/luukumag/article-preview/internal/cache/redis"
	"github.com/luukumag/article-preview/internal/config"
	"github.com/luukumag/article-preview/internal/logging"
	"github.com/luukumag/article-preview/internal/preview"
	"github.com/luukumag/article-preview/internal/storage"
	"github.com/luukumag/article-preview/internal/telemetry"
)

// App contains the application's dependencies.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	store          storage.Provider
	redis          *goredis.Client
	resolver       *preview.Resolver
	apiServer      *api.Server
	tracerShutdown telemetry.ShutdownFunc
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return BuildWithLogger(ctx, cfg, logger)
}

// BuildWithLogger creates the application's dependencies around an existing logger.
func BuildWithLogger(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("edge_path", cfg.Routes.EdgePath),
		zap.Bool("cache_enabled", cfg.Cache.RedisURL != ""),
	)

	shutdown, err := telemetry.InitTracing(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("tracer init failed: %w", err)
	}
	app.tracerShutdown = shutdown

	store, err := storage.Open(ctx, cfg, logger.Named("storage"))
	if err != nil {
		app.closeObservability(ctx)
		return nil, fmt.Errorf("store init failed: %w", err)
	}
	app.store = store

	var finder article.Finder = store
	if cfg.Cache.RedisURL != "" {
		client, err := cacheredis.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			app.closeInfrastructure()
			app.closeObservability(ctx)
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		app.redis = client
		finder = cacheredis.NewCachedFinder(client, store, cfg.CacheTTL(), cfg.Cache.Prefix, logger.Named("cache"))
		logger.Info("article cache enabled", zap.Duration("ttl", cfg.CacheTTL()))
	}

	app.resolver = preview.NewResolver(finder, preview.SiteFromConfig(cfg.Site), logger.Named("preview"))
	app.apiServer = api.NewServer(app.resolver, store, cfg, logger.Named("api"))
	return app, nil
}

// Resolver exposes the configured preview resolver.
func (a *App) Resolver() *preview.Resolver {
	return a.resolver
}

// Handler returns the HTTP handler serving all routes.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application started")
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: time.Duration(a.cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	closeErr := a.Close(shutdownCtx)
	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return closeErr
	}
}

// Close gracefully shuts down the application.
func (a *App) Close(ctx context.Context) error {
	a.closeInfrastructure()
	a.closeObservability(ctx)
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) closeInfrastructure() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis client close failed", zap.Error(err))
		}
		a.redis = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

func (a *App) closeObservability(ctx context.Context) {
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
		a.tracerShutdown = nil
	}
	_ = a.logger.Sync()
}
