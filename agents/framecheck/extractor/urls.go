package extractor

import (
	"net/url"
	"strings"
)

// IsVideoPage reports whether pageURL is an http(s) YouTube watch page or Short.
func IsVideoPage(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || !IsWebURL(u) {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return false
	}
	return u.Path == "/watch" || strings.HasPrefix(u.Path, "/shorts/")
}

// IsWebURL reports whether u is an absolute http or https URL.
func IsWebURL(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// VideoID returns the video ID from a watch URL (?v=) or a Shorts path, or "" if there is none.
func VideoID(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("v"); id != "" {
		return id
	}
	_, rest, found := strings.Cut(u.Path, "/shorts/")
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}
