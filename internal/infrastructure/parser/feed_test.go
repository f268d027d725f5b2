package parser

import (
	"context"
	"testing"

	"NewsHarvester/internal/discover"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example News</title>
    <link>https://example.com/news</link>
    <item>
      <title>Story one</title>
      <link>https://example.com/news/story-one?utm_source=rss</link>
    </item>
    <item>
      <title>Story two</title>
      <link>https://example.com/news/story-two</link>
    </item>
    <item>
      <title>Duplicate of one</title>
      <link>https://example.com/news/story-one</link>
    </item>
    <item>
      <title>Elsewhere</title>
      <link>https://other.com/news/offsite</link>
    </item>
  </channel>
</rss>`

func TestFeedDiscover(t *testing.T) {
	t.Parallel()

	feedURL := "https://example.com/feed.rss"
	fetcher := &stubFetcher{pages: map[string][]byte{feedURL: []byte(sampleFeed)}}
	d := NewFeedDiscoverer(fetcher, nil)

	links, err := d.Discover(context.Background(), discover.Request{
		SiteName: "example",
		BaseURL:  "https://example.com/news",
		FeedURL:  feedURL,
		MaxLinks: 10,
	})
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	want := []string{
		"https://example.com/news/story-one",
		"https://example.com/news/story-two",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("candidate %d = %s, want %s", i, links[i], want[i])
		}
	}
}

func TestFeedDiscoverUnparsable(t *testing.T) {
	t.Parallel()

	feedURL := "https://example.com/feed.rss"
	fetcher := &stubFetcher{pages: map[string][]byte{feedURL: []byte("<html>not a feed</html>")}}
	d := NewFeedDiscoverer(fetcher, nil)

	links, err := d.Discover(context.Background(), discover.Request{
		SiteName: "example",
		BaseURL:  "https://example.com/news",
		FeedURL:  feedURL,
	})
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected no candidates from an unparsable feed, got %v", links)
	}
}
