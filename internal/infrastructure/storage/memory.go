package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

// MemoryRepository is an in-process ArticleRepository with the same
// compare-and-set semantics as the Postgres store. It backs deterministic
// tests and runs without a database when no DSN is configured.
type MemoryRepository struct {
	mu       sync.Mutex
	articles map[string]domain.Article
}

var _ ports.ArticleRepository = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{articles: map[string]domain.Article{}}
}

// Create inserts a record; a URL collision maps to ErrDuplicate.
func (r *MemoryRepository) Create(ctx context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[a.URL]; exists {
		return domain.ErrDuplicate
	}
	r.articles[a.URL] = cloneArticle(*a)
	return nil
}

// GetByURL loads a copy of the record.
func (r *MemoryRepository) GetByURL(ctx context.Context, rawURL string) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.articles[rawURL]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := cloneArticle(stored)
	return &copied, nil
}

// Update applies the record only while the stored status equals expected;
// the mutex makes the check-and-write atomic.
func (r *MemoryRepository) Update(ctx context.Context, a *domain.Article, expected domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.articles[a.URL]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != expected {
		return domain.ErrConflict
	}
	r.articles[a.URL] = cloneArticle(*a)
	return nil
}

// Query filters, orders and pages stored records.
func (r *MemoryRepository) Query(ctx context.Context, filter domain.Filter) ([]domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Article
	for _, a := range r.articles {
		if !matches(a, filter) {
			continue
		}
		matched = append(matched, cloneArticle(a))
	}

	orderBy := filter.OrderBy
	if !domain.OrderColumns[orderBy] {
		orderBy = "created_at"
	}
	sort.SliceStable(matched, func(i, j int) bool {
		less := timestampFor(matched[i], orderBy).Before(timestampFor(matched[j], orderBy))
		if filter.Descending {
			return !less
		}
		return less
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Delete removes a record by URL.
func (r *MemoryRepository) Delete(ctx context.Context, rawURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.articles, rawURL)
	return nil
}

// Stats aggregates the stored corpus.
func (r *MemoryRepository) Stats(ctx context.Context) (domain.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := domain.Stats{
		ByStatus:   map[domain.Status]int{},
		ByLanguage: map[domain.Language]int{},
		ByDomain:   map[string]int{},
	}

	totalWords := 0
	for _, a := range r.articles {
		stats.Total++
		stats.ByStatus[a.Status]++
		stats.ByLanguage[a.Language]++
		stats.ByDomain[a.SourceDomain]++
		totalWords += a.WordCount
	}
	if stats.Total > 0 {
		stats.AvgWordCount = float64(totalWords) / float64(stats.Total)
	}
	return stats, nil
}

func matches(a domain.Article, filter domain.Filter) bool {
	if filter.Status != "" && a.Status != filter.Status {
		return false
	}
	if filter.Language != "" && a.Language != filter.Language {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.BodyText), needle) {
			return false
		}
	}
	if filter.RetryCountBelow > 0 && a.RetryCount >= filter.RetryCountBelow {
		return false
	}
	if filter.RetryCountAtLeast > 0 && a.RetryCount < filter.RetryCountAtLeast {
		return false
	}
	if !filter.UpdatedBefore.IsZero() && !a.UpdatedAt.Before(filter.UpdatedBefore) {
		return false
	}
	return true
}

func timestampFor(a domain.Article, column string) time.Time {
	switch column {
	case "updated_at":
		return a.UpdatedAt
	case "published_at":
		if a.PublishedAt != nil {
			return *a.PublishedAt
		}
		return time.Time{}
	default:
		return a.CreatedAt
	}
}

func cloneArticle(a domain.Article) domain.Article {
	if a.Authors != nil {
		a.Authors = append([]string(nil), a.Authors...)
	}
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		a.PublishedAt = &t
	}
	return a
}
