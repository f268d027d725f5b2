package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsHarvester/internal/discover"
	"NewsHarvester/internal/ports"
)

const defaultMaxLinks = 20

// ListingDiscoverer extracts candidate article URLs from a site's HTML
// listing page.
type ListingDiscoverer struct {
	fetcher ports.Fetcher
	logger  *slog.Logger
}

var _ discover.Discoverer = (*ListingDiscoverer)(nil)

// NewListingDiscoverer wires the shared fetcher.
func NewListingDiscoverer(fetcher ports.Fetcher, logger *slog.Logger) *ListingDiscoverer {
	return &ListingDiscoverer{fetcher: fetcher, logger: logger}
}

// Name identifies the strategy inside the registry.
func (l *ListingDiscoverer) Name() string {
	return "listing"
}

// Discover fetches the listing page and returns filtered candidate URLs in
// document order. An unparsable page yields an empty sequence, not an
// error; only the fetch itself can fail.
func (l *ListingDiscoverer) Discover(ctx context.Context, req discover.Request) ([]string, error) {
	base, err := url.Parse(req.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %s: %w", req.BaseURL, err)
	}

	page, err := l.fetcher.Fetch(ctx, req.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", req.BaseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		l.debug("unparsable listing page", "site", req.SiteName, "url", req.BaseURL, "error", err)
		return []string{}, nil
	}

	maxLinks := req.MaxLinks
	if maxLinks <= 0 {
		maxLinks = defaultMaxLinks
	}

	// Self links come back in normalized form, so the guard must compare
	// against the normalized base, not the configured one.
	self, ok := discover.Normalize(base, req.BaseURL)
	if !ok {
		self = strings.TrimSuffix(req.BaseURL, "/")
	}

	seen := map[string]struct{}{}
	var candidates []string

	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		normalized, ok := discover.Normalize(base, href)
		if !ok {
			return true
		}
		if normalized == self {
			return true
		}
		if _, dup := seen[normalized]; dup {
			return true
		}
		seen[normalized] = struct{}{}
		candidates = append(candidates, normalized)
		return len(candidates) < maxLinks
	})

	l.debug("listing discovered", "site", req.SiteName, "count", len(candidates))
	return candidates, nil
}

func (l *ListingDiscoverer) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
