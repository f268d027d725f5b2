package discover

import (
	"net/url"
	"path"
	"strings"
)

// Extensions and path segments that mark a link as a non-article resource.
var (
	staticExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
		".svg": true, ".ico": true, ".css": true, ".js": true, ".json": true,
		".xml": true, ".pdf": true, ".zip": true, ".mp3": true, ".mp4": true,
	}
	listingSegments = map[string]bool{
		"tag": true, "tags": true, "category": true, "categories": true,
		"topic": true, "topics": true, "page": true, "author": true,
		"authors": true, "search": true, "login": true, "signup": true,
		"register": true, "subscribe": true, "newsletter": true,
		"share": true, "print": true, "feed": true, "rss": true,
	}
	trackingParams = []string{"fbclid", "gclid", "ref", "source", "mc_cid", "mc_eid"}
)

// Normalize resolves href against the site base, strips query noise and
// fragments, and trims the trailing slash. The second return is false when
// the link cannot be a candidate article URL on this site.
func Normalize(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !sameDomain(base.Hostname(), u.Hostname()) {
		return "", false
	}
	if !articlePath(u) {
		return "", false
	}

	u.Fragment = ""
	stripQueryNoise(u)
	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.Path == "" {
		return "", false
	}

	return u.String(), true
}

// sameDomain treats www. as transparent but otherwise requires an exact
// host match, so subdomain link farms are rejected.
func sameDomain(siteHost, linkHost string) bool {
	return strings.TrimPrefix(strings.ToLower(siteHost), "www.") ==
		strings.TrimPrefix(strings.ToLower(linkHost), "www.")
}

func articlePath(u *url.URL) bool {
	p := strings.ToLower(u.Path)
	if p == "" || p == "/" {
		return false
	}
	if staticExtensions[path.Ext(p)] {
		return false
	}
	for _, segment := range strings.Split(strings.Trim(p, "/"), "/") {
		if listingSegments[segment] {
			return false
		}
	}
	return true
}

func stripQueryNoise(u *url.URL) {
	if u.RawQuery == "" {
		return
	}
	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	for _, key := range trackingParams {
		q.Del(key)
	}
	u.RawQuery = q.Encode()
}
