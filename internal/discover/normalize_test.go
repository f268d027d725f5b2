package discover

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return u
}

func TestNormalizeAcceptsArticleLinks(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://www.example.com/news")

	got, ok := Normalize(base, "/news/corn-prices-rise/")
	if !ok {
		t.Fatal("expected article link to be accepted")
	}
	if got != "https://www.example.com/news/corn-prices-rise" {
		t.Fatalf("unexpected normalization: %s", got)
	}

	got, ok = Normalize(base, "https://example.com/news/relative-host")
	if !ok {
		t.Fatal("expected www-less same-domain link to be accepted")
	}
	if got != "https://example.com/news/relative-host" {
		t.Fatalf("unexpected normalization: %s", got)
	}
}

func TestNormalizeStripsQueryNoise(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://example.com/news")

	got, ok := Normalize(base, "/news/story?utm_source=tw&utm_medium=social&fbclid=abc&id=7#comments")
	if !ok {
		t.Fatal("expected link to be accepted")
	}
	if got != "https://example.com/news/story?id=7" {
		t.Fatalf("tracking noise survived: %s", got)
	}
}

func TestNormalizeRejectsNonArticles(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://example.com/news")

	rejected := []string{
		"",
		"#top",
		"mailto:tips@example.com",
		"javascript:void(0)",
		"https://other.com/news/story",
		"https://cdn.example.com/news/story",
		"/assets/logo.png",
		"/style/main.css",
		"/tag/corn",
		"/category/markets",
		"/news/page/2",
		"/author/jane-doe",
		"/search?q=corn",
		"/",
	}
	for _, href := range rejected {
		if got, ok := Normalize(base, href); ok {
			t.Errorf("expected %q to be rejected, got %s", href, got)
		}
	}
}
