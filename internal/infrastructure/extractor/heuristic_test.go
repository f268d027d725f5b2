package extractor

import (
	"strings"
	"testing"
)

const articlePage = `<html>
<head>
	<title>Example | Corn prices rise</title>
	<meta name="description" content="Corn futures climbed on export news.">
	<meta property="og:image" content="https://example.com/img/corn.jpg">
</head>
<body>
	<nav><a href="/news">News</a></nav>
	<h1>Corn prices rise</h1>
	<article>
		<p>Corn futures climbed sharply on Tuesday after fresh export numbers.</p>
		<p>Traders pointed to renewed demand from overseas buyers.</p>
		<script>trackPageView();</script>
	</article>
	<footer>Copyright</footer>
</body>
</html>`

func TestHeuristicExtractsArticleContainer(t *testing.T) {
	t.Parallel()

	got, err := NewHeuristicStrategy().Extract("https://example.com/news/corn", []byte(articlePage))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if got.Title != "Corn prices rise" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if !strings.Contains(got.BodyText, "Corn futures climbed sharply") ||
		!strings.Contains(got.BodyText, "overseas buyers") {
		t.Fatalf("body missing paragraphs: %q", got.BodyText)
	}
	if strings.Contains(got.BodyText, "trackPageView") {
		t.Fatalf("script text leaked into body: %q", got.BodyText)
	}
	if strings.Contains(got.BodyText, "Copyright") {
		t.Fatalf("footer text leaked into body: %q", got.BodyText)
	}
	if got.MetaDescription != "Corn futures climbed on export news." {
		t.Fatalf("unexpected meta description: %q", got.MetaDescription)
	}
	if got.TopImage != "https://example.com/img/corn.jpg" {
		t.Fatalf("unexpected top image: %q", got.TopImage)
	}
	if got.WordCount == 0 {
		t.Fatal("word count not computed")
	}
}

func TestHeuristicLongestBlockFallback(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>Bare page</title></head><body>
		<p>short</p>
		<p>This considerably longer paragraph should be selected as the body.</p>
	</body></html>`

	got, err := NewHeuristicStrategy().Extract("https://example.com/news/bare", []byte(page))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !strings.Contains(got.BodyText, "considerably longer paragraph") {
		t.Fatalf("longest block not selected: %q", got.BodyText)
	}
	if got.Title != "Bare page" {
		t.Fatalf("title fallback failed: %q", got.Title)
	}
}

func TestHeuristicEmptyPage(t *testing.T) {
	t.Parallel()

	_, err := NewHeuristicStrategy().Extract("https://example.com/news/empty", []byte("<html><body></body></html>"))
	if err == nil {
		t.Fatal("expected error on page without content")
	}
}
