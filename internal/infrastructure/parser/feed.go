package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mmcdole/gofeed"

	"NewsHarvester/internal/discover"
	"NewsHarvester/internal/ports"
)

// FeedDiscoverer extracts candidate article URLs from a site's RSS or Atom
// feed. It applies the same normalization and cap policy as the listing
// strategy so the lifecycle sees identical candidate shapes.
type FeedDiscoverer struct {
	fetcher ports.Fetcher
	parser  *gofeed.Parser
	logger  *slog.Logger
}

var _ discover.Discoverer = (*FeedDiscoverer)(nil)

// NewFeedDiscoverer wires the shared fetcher and a feed parser.
func NewFeedDiscoverer(fetcher ports.Fetcher, logger *slog.Logger) *FeedDiscoverer {
	return &FeedDiscoverer{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (f *FeedDiscoverer) Name() string {
	return "feed"
}

// Discover fetches and parses the site feed. A feed that does not parse
// yields an empty sequence; only the fetch itself can fail.
func (f *FeedDiscoverer) Discover(ctx context.Context, req discover.Request) ([]string, error) {
	feedURL := req.FeedURL
	if feedURL == "" {
		feedURL = req.BaseURL
	}

	base, err := url.Parse(req.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %s: %w", req.BaseURL, err)
	}

	raw, err := f.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	feed, err := f.parser.ParseString(string(raw))
	if err != nil {
		f.debug("unparsable feed", "site", req.SiteName, "url", feedURL, "error", err)
		return []string{}, nil
	}

	maxLinks := req.MaxLinks
	if maxLinks <= 0 {
		maxLinks = defaultMaxLinks
	}

	seen := map[string]struct{}{}
	var candidates []string
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		normalized, ok := discover.Normalize(base, item.Link)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		candidates = append(candidates, normalized)
		if len(candidates) >= maxLinks {
			break
		}
	}

	f.debug("feed discovered", "site", req.SiteName, "count", len(candidates))
	return candidates, nil
}

func (f *FeedDiscoverer) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
