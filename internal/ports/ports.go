package ports

import (
	"context"
	"time"

	"NewsHarvester/internal/domain"
)

// Fetcher retrieves raw page bytes for a URL. Transport problems, non-2xx
// statuses and timeouts all surface as errors.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// ArticleRepository persists article records keyed by URL.
//
// Update is a compare-and-set: it applies only when the stored status still
// equals expected, returning domain.ErrConflict otherwise. That conditional
// write is the claim primitive the lifecycle relies on.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetByURL(ctx context.Context, rawURL string) (*domain.Article, error)
	Update(ctx context.Context, article *domain.Article, expected domain.Status) error
	Query(ctx context.Context, filter domain.Filter) ([]domain.Article, error)
	Delete(ctx context.Context, rawURL string) error
	Stats(ctx context.Context) (domain.Stats, error)
}

// Extractor turns a fetched page into a structured extraction result or a
// definitive failure. It never partially writes to the repository.
type Extractor interface {
	Extract(ctx context.Context, pageURL string, page []byte) (domain.Extraction, error)
}

// LanguageDetector classifies body text. It never fails: anything it cannot
// classify reliably comes back as unknown.
type LanguageDetector interface {
	Detect(text string) domain.Language
}

// Summarizer condenses body text, annotating non-native-language input.
// An error means every model tier failed.
type Summarizer interface {
	Summarize(ctx context.Context, text string, lang domain.Language) (string, error)
}

// Scheduler drives a recurring job.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
