package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tutormatch/internal/adapters/http/api"
	"github.com/okian/tutormatch/internal/adapters/http/swagger"
	"github.com/okian/tutormatch/internal/adapters/repository"
	app "github.com/okian/tutormatch/internal/app"
	"github.com/okian/tutormatch/internal/config"
	"github.com/okian/tutormatch/internal/domain/matching"
	"github.com/okian/tutormatch/pkg/logger"
	"github.com/okian/tutormatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithLevel(cfg.LogLevel),
	); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithEngine(matching.NewEngine(engineOpts...)),
		app.WithProfileStore(st.profiles),
		app.WithSuggestionStore(st.suggestions),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxSkills(cfg.MaxSkills),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

// stores bundles the storage backends selected by configuration.
type stores struct {
	profiles    repository.ProfileStore
	suggestions repository.SuggestionStore
	closers     []func() error
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// openStores builds the profile and suggestion stores. Postgres is migrated
// on open; a Redis address adds a cache in front of suggestion reads.
func openStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*stores, error) {
	st := &stores{}
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		pg := repository.NewPostgresStore(db)
		st.closers = append(st.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			st.close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		st.profiles, st.suggestions = pg, pg
	default:
		mem := repository.NewMemoryStore()
		st.profiles, st.suggestions = mem, mem
	}
	log.Info(ctx, "storage ready", logger.String("backend", cfg.Storage))

	if cfg.RedisAddr != "" {
		rdb := repository.NewRedisClient(cfg.RedisAddr)
		st.closers = append(st.closers, rdb.Close)
		st.suggestions = repository.NewCachedSuggestions(st.suggestions, rdb,
			repository.WithCacheTTL(cfg.RedisTTL),
			repository.WithCacheLogger(log.Named("suggestion_cache")),
		)
		log.Info(ctx, "suggestion cache enabled", logger.String("redis_addr", cfg.RedisAddr))
	}
	return st, nil
}

// newHandler registers the API and docs routes.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithMaxRankLimit(cfg.MaxRankLimit),
		api.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		api.WithLogger(logger.Get().Named("api")),
	).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater periodically publishes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	// GetStats refreshes the profile count gauge itself.
	stats := svc.GetStats(ctx)

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
