package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"NewsHarvester/internal/domain"
)

// ReadabilityStrategy is the primary, full-document strategy: article
// boilerplate removal producing title, body, byline, publish date, top
// image and excerpt in one pass.
type ReadabilityStrategy struct{}

var _ Strategy = (*ReadabilityStrategy)(nil)

// NewReadabilityStrategy returns the primary strategy.
func NewReadabilityStrategy() *ReadabilityStrategy {
	return &ReadabilityStrategy{}
}

// Name identifies the strategy in logs.
func (r *ReadabilityStrategy) Name() string {
	return "readability"
}

// Extract runs readability over the raw page.
func (r *ReadabilityStrategy) Extract(pageURL string, page []byte) (domain.Extraction, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("parse url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(page), u)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("readability: %w", err)
	}

	body := normalizeText(article.TextContent)
	if body == "" {
		return domain.Extraction{}, fmt.Errorf("readability produced empty body")
	}

	return domain.Extraction{
		Title:           normalizeText(article.Title),
		BodyText:        body,
		Authors:         splitByline(article.Byline),
		PublishedAt:     article.PublishedTime,
		MetaDescription: normalizeText(article.Excerpt),
		TopImage:        article.Image,
		WordCount:       wordCount(body),
	}, nil
}

// splitByline turns "A, B and C" into an ordered author list.
func splitByline(byline string) []string {
	byline = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(byline), "By "))
	if byline == "" {
		return nil
	}
	byline = strings.ReplaceAll(byline, " and ", ",")
	byline = strings.ReplaceAll(byline, " & ", ",")

	var authors []string
	for _, part := range strings.Split(byline, ",") {
		if name := strings.TrimSpace(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
