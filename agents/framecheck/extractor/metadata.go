package extractor

import (
	"fmt"
	"strconv"
	"strings"

	"framecheck/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
)

// ParseMetadata reads title, description, channel and counts from watch-page HTML.
// Meta tags win because they are the same for every layout; DOM text is the fallback
// and the document title the last resort. Missing values stay empty.
func ParseMetadata(doc *goquery.Document) models.VideoMetadata {
	activeShort := doc.Find("ytd-reel-video-renderer[is-active]").First()

	title := firstNonEmpty(
		meta(doc, "title"),
		text(doc.Find("#title h1")),
		text(activeShort.Find(".generated-headline-text")),
		text(doc.Find("title")),
	)

	channel := firstNonEmpty(
		attr(doc.Find(`link[itemprop="name"]`), "content"),
		text(doc.Find("#channel-name a")),
		text(activeShort.Find("ytd-channel-name a")),
	)

	subscribers := firstNonEmpty(
		text(doc.Find("#owner-sub-count")),
		text(doc.Find("yt-formatted-string#owner-sub-count")),
	)

	views := firstNonEmpty(
		text(doc.Find("span.view-count")),
		text(doc.Find("ytd-video-view-count-renderer span")),
		interactionCount(doc),
	)

	return models.VideoMetadata{
		Title:           title,
		Description:     meta(doc, "description"),
		Channel:         channel,
		SubscriberCount: subscribers,
		ViewCount:       views,
	}
}

func meta(doc *goquery.Document, name string) string {
	return attr(doc.Find(fmt.Sprintf(`meta[name="%s"]`, name)), "content")
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.First().Attr(name)
	return strings.TrimSpace(v)
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

// interactionCount covers server-rendered pages, where the view counter is only in microdata.
func interactionCount(doc *goquery.Document) string {
	raw := attr(doc.Find(`meta[itemprop="interactionCount"]`), "content")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ""
	}
	return humanize.Comma(n) + " views"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
