package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewsHarvester/internal/domain"
)

func seedArticle(t *testing.T, repo *MemoryRepository, url string, mutate func(*domain.Article)) *domain.Article {
	t.Helper()
	a := domain.NewArticle(url)
	if mutate != nil {
		mutate(a)
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("seed %s: %v", url, err)
	}
	return a
}

func TestMemoryCreateDuplicate(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	seedArticle(t, repo, "https://example.com/news/a", nil)

	err := repo.Create(context.Background(), domain.NewArticle("https://example.com/news/a"))
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryGetByURLNotFound(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	_, err := repo.GetByURL(context.Background(), "https://example.com/missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUpdateCompareAndSet(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	a := seedArticle(t, repo, "https://example.com/news/a", nil)

	claimed := *a
	if err := claimed.Transition(domain.StatusProcessing); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := repo.Update(context.Background(), &claimed, domain.StatusPending); err != nil {
		t.Fatalf("first claim must succeed: %v", err)
	}

	// Second worker still holds the pending snapshot; its claim must lose.
	rival := *a
	if err := rival.Transition(domain.StatusProcessing); err != nil {
		t.Fatalf("transition: %v", err)
	}
	err := repo.Update(context.Background(), &rival, domain.StatusPending)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for second claim, got %v", err)
	}

	stored, err := repo.GetByURL(context.Background(), a.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.StatusProcessing {
		t.Fatalf("unexpected stored status: %s", stored.Status)
	}
}

func TestMemoryQueryFilters(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	now := time.Now().UTC()

	seedArticle(t, repo, "https://example.com/news/fresh-fail", func(a *domain.Article) {
		a.Status = domain.StatusFailed
		a.RetryCount = 1
		a.UpdatedAt = now
	})
	seedArticle(t, repo, "https://example.com/news/capped-old", func(a *domain.Article) {
		a.Status = domain.StatusFailed
		a.RetryCount = 3
		a.UpdatedAt = now.Add(-40 * 24 * time.Hour)
	})
	seedArticle(t, repo, "https://example.com/news/done", func(a *domain.Article) {
		a.Status = domain.StatusCompleted
		a.Title = "Corn harvest outlook"
		a.Language = domain.LangEnglish
		a.WordCount = 500
	})

	retriable, err := repo.Query(context.Background(), domain.Filter{
		Status:          domain.StatusFailed,
		RetryCountBelow: 3,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(retriable) != 1 || retriable[0].URL != "https://example.com/news/fresh-fail" {
		t.Fatalf("unexpected retriable set: %+v", retriable)
	}

	stale, err := repo.Query(context.Background(), domain.Filter{
		Status:            domain.StatusFailed,
		RetryCountAtLeast: 3,
		UpdatedBefore:     now.Add(-30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(stale) != 1 || stale[0].URL != "https://example.com/news/capped-old" {
		t.Fatalf("unexpected stale set: %+v", stale)
	}

	byText, err := repo.Query(context.Background(), domain.Filter{Search: "harvest"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(byText) != 1 || byText[0].URL != "https://example.com/news/done" {
		t.Fatalf("unexpected search result: %+v", byText)
	}
}

func TestMemoryQueryOrderingAndPaging(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	base := time.Now().UTC()
	for i, u := range []string{
		"https://example.com/news/a",
		"https://example.com/news/b",
		"https://example.com/news/c",
	} {
		offset := time.Duration(i) * time.Hour
		seedArticle(t, repo, u, func(a *domain.Article) {
			a.CreatedAt = base.Add(offset)
		})
	}

	newest, err := repo.Query(context.Background(), domain.Filter{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(newest) != 2 || newest[0].URL != "https://example.com/news/c" {
		t.Fatalf("unexpected ordering: %+v", newest)
	}

	paged, err := repo.Query(context.Background(), domain.Filter{
		OrderBy: "created_at",
		Limit:   2,
		Offset:  2,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(paged) != 1 || paged[0].URL != "https://example.com/news/c" {
		t.Fatalf("unexpected page: %+v", paged)
	}
}

func TestMemoryStats(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	seedArticle(t, repo, "https://one.com/news/a", func(a *domain.Article) {
		a.Status = domain.StatusCompleted
		a.Language = domain.LangEnglish
		a.WordCount = 100
	})
	seedArticle(t, repo, "https://two.com/news/b", func(a *domain.Article) {
		a.Status = domain.StatusFailed
		a.WordCount = 300
	})

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 {
		t.Fatalf("total = %d", stats.Total)
	}
	if stats.ByStatus[domain.StatusCompleted] != 1 || stats.ByStatus[domain.StatusFailed] != 1 {
		t.Fatalf("unexpected status counts: %+v", stats.ByStatus)
	}
	if stats.ByDomain["one.com"] != 1 || stats.ByDomain["two.com"] != 1 {
		t.Fatalf("unexpected domain counts: %+v", stats.ByDomain)
	}
	if stats.AvgWordCount != 200 {
		t.Fatalf("avg word count = %v", stats.AvgWordCount)
	}
}

func TestMemoryCloneIsolation(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	a := seedArticle(t, repo, "https://example.com/news/a", func(a *domain.Article) {
		a.Authors = []string{"Jane Doe"}
	})

	a.Authors[0] = "mutated"

	stored, err := repo.GetByURL(context.Background(), a.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Authors[0] != "Jane Doe" {
		t.Fatal("stored record shares slice memory with the caller")
	}
}
