package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"NewsHarvester/internal/config"
	"NewsHarvester/internal/discover"
	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/metrics"
	"NewsHarvester/internal/ports"
)

// PipelineDeps wires all driven adapters into the lifecycle pipeline.
type PipelineDeps struct {
	Repository ports.ArticleRepository
	Fetcher    ports.Fetcher
	Extractor  ports.Extractor
	Detector   ports.LanguageDetector
	Summarizer ports.Summarizer
	Registry   *discover.Registry
	Sites      []config.SiteConfig
	MaxLinks   int
	MaxRetries int
	RetryBatch int
	Retention  time.Duration
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Pipeline owns every article state transition: discovery, per-URL
// processing, the retry pass and the cleanup pass. All entry points are
// idempotent and safe to invoke concurrently; the pending -> processing
// compare-and-set is the serialization point.
type Pipeline struct {
	repo       ports.ArticleRepository
	fetcher    ports.Fetcher
	extractor  ports.Extractor
	detector   ports.LanguageDetector
	summarizer ports.Summarizer
	registry   *discover.Registry
	sites      []config.SiteConfig
	maxLinks   int
	maxRetries int
	retryBatch int
	retention  time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewPipeline constructs the lifecycle pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		repo:       deps.Repository,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		detector:   deps.Detector,
		summarizer: deps.Summarizer,
		registry:   deps.Registry,
		sites:      deps.Sites,
		maxLinks:   deps.MaxLinks,
		maxRetries: deps.MaxRetries,
		retryBatch: deps.RetryBatch,
		retention:  deps.Retention,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// RunDiscovery iterates the configured sites, creates pending records for
// unseen candidate URLs and processes them. One bad site never blocks the
// others; only a store write failure aborts the run.
func (p *Pipeline) RunDiscovery(ctx context.Context) error {
	log := p.log().With("pass", "discovery", "run_id", shortRunID())
	log.Info("discovery started", "sites", len(p.sites))

	for _, site := range p.sites {
		if _, err := url.ParseRequestURI(site.URL); err != nil {
			log.Error("invalid site url, skipping", "site", site.Name, "url", site.URL, "error", err)
			continue
		}

		strategy, err := p.registry.Resolve(site.Strategy)
		if err != nil {
			log.Error("unknown discovery strategy, skipping", "site", site.Name, "error", err)
			continue
		}

		links, err := strategy.Discover(ctx, discover.Request{
			SiteName: site.Name,
			BaseURL:  site.URL,
			FeedURL:  site.FeedURL,
			MaxLinks: p.maxLinks,
		})
		if err != nil {
			log.Warn("discovery failed for site", "site", site.Name, "error", err)
			continue
		}
		if p.metrics != nil {
			p.metrics.Discovered.WithLabelValues(site.Name).Add(float64(len(links)))
		}

		created := 0
		for _, link := range links {
			article := domain.NewArticle(link)
			err := p.repo.Create(ctx, article)
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			if err != nil {
				return fmt.Errorf("create record for %s: %w", link, err)
			}
			created++

			if err := p.processRecord(ctx, article, log); err != nil {
				return err
			}
		}
		log.Info("site done", "site", site.Name, "candidates", len(links), "new", created)
	}

	return nil
}

// ProcessURL handles a single manually submitted URL. An already-known URL
// is not reprocessed while pending work or a completed result exists; a
// failed record is re-claimed regardless of its retry count, which is the
// recovery path for permanently failed articles. The returned record
// reflects the state after the call.
func (p *Pipeline) ProcessURL(ctx context.Context, rawURL string) (*domain.Article, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	log := p.log().With("pass", "single", "url", rawURL)

	article, err := p.repo.GetByURL(ctx, rawURL)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		article = domain.NewArticle(rawURL)
		if createErr := p.repo.Create(ctx, article); createErr != nil {
			if errors.Is(createErr, domain.ErrDuplicate) {
				// Lost a discovery race; report the winner's record.
				return p.repo.GetByURL(ctx, rawURL)
			}
			return nil, fmt.Errorf("create record: %w", createErr)
		}
	case err != nil:
		return nil, fmt.Errorf("load record: %w", err)
	}

	switch article.Status {
	case domain.StatusProcessing, domain.StatusCompleted:
		log.Info("already known, skipping", "status", article.Status)
		return article, nil
	case domain.StatusFailed:
		if err := p.reopen(ctx, article); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return p.repo.GetByURL(ctx, rawURL)
			}
			return nil, err
		}
	}

	if err := p.processRecord(ctx, article, log); err != nil {
		return nil, err
	}
	return p.repo.GetByURL(ctx, rawURL)
}

// RunRetryPass re-queues failed records still under the retry cap and
// processes them. Records at the cap stay failed permanently.
func (p *Pipeline) RunRetryPass(ctx context.Context) error {
	log := p.log().With("pass", "retry", "run_id", shortRunID())

	failed, err := p.repo.Query(ctx, domain.Filter{
		Status:          domain.StatusFailed,
		RetryCountBelow: p.maxRetries,
		OrderBy:         "updated_at",
		Limit:           p.retryBatch,
	})
	if err != nil {
		return fmt.Errorf("select retriable records: %w", err)
	}
	if len(failed) == 0 {
		return nil
	}
	log.Info("retry pass started", "records", len(failed))

	for i := range failed {
		article := &failed[i]
		article.RetryCount++
		if err := p.reopen(ctx, article); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return err
		}
		log.Info("record re-queued", "url", article.URL, "retry", article.RetryCount)

		if err := p.processRecord(ctx, article, log); err != nil {
			return err
		}
	}
	return nil
}

// RunCleanupPass deletes permanently failed records older than the
// retention threshold. Completed and still-retriable records are never
// touched.
func (p *Pipeline) RunCleanupPass(ctx context.Context) error {
	log := p.log().With("pass", "cleanup", "run_id", shortRunID())
	cutoff := time.Now().UTC().Add(-p.retention)

	stale, err := p.repo.Query(ctx, domain.Filter{
		Status:            domain.StatusFailed,
		RetryCountAtLeast: p.maxRetries,
		UpdatedBefore:     cutoff,
	})
	if err != nil {
		return fmt.Errorf("select stale records: %w", err)
	}

	for i := range stale {
		if err := p.repo.Delete(ctx, stale[i].URL); err != nil {
			return fmt.Errorf("delete %s: %w", stale[i].URL, err)
		}
		if p.metrics != nil {
			p.metrics.CleanupDeleted.Inc()
		}
	}
	if len(stale) > 0 {
		log.Info("cleanup done", "deleted", len(stale))
	}
	return nil
}

// reopen moves a failed record back to pending through the store's
// compare-and-set, so concurrent passes cannot re-queue it twice.
func (p *Pipeline) reopen(ctx context.Context, article *domain.Article) error {
	if err := article.Transition(domain.StatusPending); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, article, domain.StatusFailed); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrConflict
		}
		return fmt.Errorf("reopen %s: %w", article.URL, err)
	}
	return nil
}

// processRecord drives one pending record to a terminal state. Per-URL
// errors become a failed status with a reason; only store failures
// propagate. A lost claim is a silent no-op.
func (p *Pipeline) processRecord(ctx context.Context, article *domain.Article, log *slog.Logger) error {
	if err := article.Transition(domain.StatusProcessing); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, article, domain.StatusPending); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			if p.metrics != nil {
				p.metrics.ClaimConflicts.Inc()
			}
			log.Debug("claim lost", "url", article.URL)
			return nil
		}
		return fmt.Errorf("claim %s: %w", article.URL, err)
	}

	page, err := p.fetcher.Fetch(ctx, article.URL)
	if err != nil {
		return p.failRecord(ctx, article, fmt.Sprintf("fetch error: %v", err), log)
	}

	extraction, err := p.extractor.Extract(ctx, article.URL, page)
	if err != nil {
		return p.failRecord(ctx, article, err.Error(), log)
	}
	article.ApplyExtraction(extraction)
	article.Language = p.detector.Detect(extraction.BodyText)

	summary, err := p.summarizer.Summarize(ctx, extraction.BodyText, article.Language)
	if err != nil {
		return p.failRecord(ctx, article, err.Error(), log)
	}
	article.Summary = summary

	if err := article.Transition(domain.StatusCompleted); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, article, domain.StatusProcessing); err != nil {
		return fmt.Errorf("persist %s: %w", article.URL, err)
	}

	if p.metrics != nil {
		p.metrics.Processed.WithLabelValues(string(domain.StatusCompleted)).Inc()
	}
	log.Info("article completed", "url", article.URL, "language", article.Language, "words", article.WordCount)
	return nil
}

func (p *Pipeline) failRecord(ctx context.Context, article *domain.Article, reason string, log *slog.Logger) error {
	if err := article.Fail(reason); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, article, domain.StatusProcessing); err != nil {
		return fmt.Errorf("persist failure for %s: %w", article.URL, err)
	}
	if p.metrics != nil {
		p.metrics.Processed.WithLabelValues(string(domain.StatusFailed)).Inc()
	}
	log.Warn("article failed", "url", article.URL, "reason", reason, "retry_count", article.RetryCount)
	return nil
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
