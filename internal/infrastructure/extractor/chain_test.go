package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"NewsHarvester/internal/domain"
)

type fixedStrategy struct {
	name   string
	result domain.Extraction
	err    error
	calls  int
}

func (f *fixedStrategy) Name() string { return f.name }

func (f *fixedStrategy) Extract(pageURL string, page []byte) (domain.Extraction, error) {
	f.calls++
	if f.err != nil {
		return domain.Extraction{}, f.err
	}
	return f.result, nil
}

func body(words int) domain.Extraction {
	text := strings.TrimSpace(strings.Repeat("word ", words))
	return domain.Extraction{Title: "t", BodyText: text, WordCount: words}
}

func TestChainFallsBackOnShortBody(t *testing.T) {
	t.Parallel()

	primary := &fixedStrategy{name: "primary", result: body(10)}
	fallback := &fixedStrategy{name: "fallback", result: body(200)}
	chain := NewChain(100, nil, primary, fallback)

	got, err := chain.Extract(context.Background(), "https://example.com/news/a", nil)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got.WordCount != 200 {
		t.Fatalf("expected fallback result, got %d words", got.WordCount)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("unexpected call counts: primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestChainStopsAtFirstUsableResult(t *testing.T) {
	t.Parallel()

	primary := &fixedStrategy{name: "primary", result: body(150)}
	fallback := &fixedStrategy{name: "fallback", result: body(300)}
	chain := NewChain(100, nil, primary, fallback)

	got, err := chain.Extract(context.Background(), "https://example.com/news/a", nil)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got.WordCount != 150 {
		t.Fatalf("expected primary result, got %d words", got.WordCount)
	}
	if fallback.calls != 0 {
		t.Fatal("fallback must not run once a strategy succeeds")
	}
}

func TestChainExhaustedReturnsErrNoContent(t *testing.T) {
	t.Parallel()

	primary := &fixedStrategy{name: "primary", err: errors.New("boom")}
	fallback := &fixedStrategy{name: "fallback", result: body(5)}
	chain := NewChain(100, nil, primary, fallback)

	_, err := chain.Extract(context.Background(), "https://example.com/news/a", nil)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestChainHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fixedStrategy{name: "primary", result: body(150)}
	chain := NewChain(100, nil, primary)

	_, err := chain.Extract(ctx, "https://example.com/news/a", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if primary.calls != 0 {
		t.Fatal("no strategy should run after cancellation")
	}
}
