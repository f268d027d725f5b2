package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"NewsHarvester/internal/config"
	"NewsHarvester/internal/discover"
	"NewsHarvester/internal/infrastructure/api"
	"NewsHarvester/internal/infrastructure/extractor"
	"NewsHarvester/internal/infrastructure/fetch"
	"NewsHarvester/internal/infrastructure/language"
	"NewsHarvester/internal/infrastructure/llm"
	"NewsHarvester/internal/infrastructure/parser"
	"NewsHarvester/internal/infrastructure/scheduler"
	"NewsHarvester/internal/infrastructure/storage"
	"NewsHarvester/internal/logging"
	"NewsHarvester/internal/metrics"
	"NewsHarvester/internal/ports"
	"NewsHarvester/internal/usecase"
)

// Application wires configuration to the pipeline, schedulers and the
// HTTP surface.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	runner *usecase.Runner
	server *http.Server
	db     *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	repo, db, err := buildRepository(cfg, baseLogger)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewHTTPFetcher(cfg.Fetcher.Timeout(), cfg.Fetcher.UserAgent)

	registry := discover.NewRegistry()
	registry.Register(parser.NewListingDiscoverer(fetcher, baseLogger.With("component", "discover.listing")))
	registry.Register(parser.NewFeedDiscoverer(fetcher, baseLogger.With("component", "discover.feed")))

	chain := extractor.NewChain(
		cfg.Extraction.MinWords,
		baseLogger.With("component", "extractor"),
		extractor.NewReadabilityStrategy(),
		extractor.NewHeuristicStrategy(),
	)

	summarizer, err := llm.NewOllamaSummarizer(cfg.Summarizer, baseLogger.With("component", "summarizer"), m)
	if err != nil {
		return nil, fmt.Errorf("build summarizer: %w", err)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Repository: repo,
		Fetcher:    fetcher,
		Extractor:  chain,
		Detector:   language.NewDetector(cfg.Language.MinChars),
		Summarizer: summarizer,
		Registry:   registry,
		Sites:      cfg.Sites,
		MaxLinks:   cfg.Discovery.MaxLinksPerSite,
		MaxRetries: cfg.Lifecycle.MaxRetries,
		RetryBatch: cfg.Lifecycle.RetryBatch,
		Retention:  cfg.Lifecycle.Retention(),
		Logger:     baseLogger.With("component", "pipeline"),
		Metrics:    m,
	})

	runner := usecase.NewRunner(
		pipeline,
		scheduler.NewIntervalScheduler(time.Duration(cfg.Scheduler.DiscoveryIntervalMinutes)*time.Minute),
		scheduler.NewIntervalScheduler(time.Duration(cfg.Scheduler.RetryIntervalMinutes)*time.Minute),
		scheduler.NewIntervalScheduler(time.Duration(cfg.Scheduler.CleanupIntervalHours)*time.Hour),
		baseLogger.With("component", "runner"),
	)

	server := api.NewServer(repo, pipeline, baseLogger.With("component", "api"))

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		runner: runner,
		server: &http.Server{Addr: cfg.HTTP.Addr, Handler: server.Router()},
		db:     db,
	}, nil
}

// Run starts the schedulers and the HTTP listener and blocks until the
// context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return fmt.Errorf("start schedulers: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.runner.Stop(shutdownCtx); err != nil {
		a.logger.Error("scheduler shutdown", "error", err)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("db close", "error", err)
		}
	}
	return nil
}

// buildRepository opens Postgres when a DSN is configured, otherwise falls
// back to the in-memory store.
func buildRepository(cfg config.Config, logger *slog.Logger) (ports.ArticleRepository, *sql.DB, error) {
	if cfg.Database.DSN == "" {
		logger.Warn("no database dsn configured, using in-memory store")
		return storage.NewMemoryRepository(), nil, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if err := storage.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("database connected")
	return storage.NewPostgresRepository(db), db, nil
}
