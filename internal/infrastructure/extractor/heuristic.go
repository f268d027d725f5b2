package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsHarvester/internal/domain"
)

// Selector lists tried in priority order when assembling title and body.
var (
	containerSelectors = []string{
		"article", "main", "[itemprop=articleBody]",
		".article-body", ".entry-content", ".post-content",
		".article", ".post", ".content",
	}
	titleSelectors = []string{"h1", "h2", ".title", ".article-title", ".headline"}
)

// HeuristicStrategy is the fallback: direct tag traversal using common
// title and content-container selectors. It only covers title, body and
// the meta tags reachable without boilerplate analysis.
type HeuristicStrategy struct{}

var _ Strategy = (*HeuristicStrategy)(nil)

// NewHeuristicStrategy returns the fallback strategy.
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

// Name identifies the strategy in logs.
func (h *HeuristicStrategy) Name() string {
	return "heuristic"
}

// Extract traverses the page's tag structure.
func (h *HeuristicStrategy) Extract(pageURL string, page []byte) (domain.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, nav, header, footer, aside").Each(
		func(i int, s *goquery.Selection) {
			s.Remove()
		})

	body := h.extractBody(doc)
	if body == "" {
		return domain.Extraction{}, fmt.Errorf("no content container matched")
	}

	return domain.Extraction{
		Title:           h.extractTitle(doc),
		BodyText:        body,
		MetaDescription: metaContent(doc, "meta[name=description]"),
		TopImage:        metaContent(doc, "meta[property='og:image']"),
		WordCount:       wordCount(body),
	}, nil
}

func (h *HeuristicStrategy) extractBody(doc *goquery.Document) string {
	for _, selector := range containerSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if body := normalizeText(sel.Text()); body != "" {
			return body
		}
	}

	// No recognizable container: take the longest text block on the page.
	longest := ""
	doc.Find("p, div").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); len(text) > len(longest) {
			longest = text
		}
	})
	return normalizeText(longest)
}

func (h *HeuristicStrategy) extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if title := normalizeText(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return normalizeText(doc.Find("title").First().Text())
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
