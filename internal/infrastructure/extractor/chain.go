package extractor

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

// ErrNoContent is the definitive extraction failure: every strategy was
// tried and none produced a usable body.
var ErrNoContent = errors.New("no extractable content")

// Strategy is one extraction approach. An error return means "this
// strategy cannot produce a result here" and drives the fallback, not an
// exceptional condition.
type Strategy interface {
	Name() string
	Extract(pageURL string, page []byte) (domain.Extraction, error)
}

// Chain evaluates strategies in order and stops at the first result whose
// body meets the minimum word count; shorter results are discarded.
type Chain struct {
	strategies []Strategy
	minWords   int
	logger     *slog.Logger
}

var _ ports.Extractor = (*Chain)(nil)

// NewChain builds the ordered strategy chain.
func NewChain(minWords int, logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, minWords: minWords, logger: logger}
}

// Extract runs the chain. It returns a value or ErrNoContent; it never
// writes anywhere.
func (c *Chain) Extract(ctx context.Context, pageURL string, page []byte) (domain.Extraction, error) {
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return domain.Extraction{}, err
		}

		result, err := strategy.Extract(pageURL, page)
		if err != nil {
			c.debug("strategy failed", "strategy", strategy.Name(), "url", pageURL, "error", err)
			continue
		}
		if result.WordCount < c.minWords {
			c.debug("strategy body too short",
				"strategy", strategy.Name(), "url", pageURL, "words", result.WordCount)
			continue
		}
		return result, nil
	}
	return domain.Extraction{}, ErrNoContent
}

func (c *Chain) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// normalizeText decodes HTML entities and collapses runs of whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
