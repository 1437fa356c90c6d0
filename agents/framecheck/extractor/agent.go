// Package extractor collects the page data an analysis needs: metadata, transcript
// and sampled frames. Every field is best effort and degrades to empty on failure.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"framecheck/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// ErrPageUnavailable means neither the browser nor a plain fetch produced the page.
var ErrPageUnavailable = errors.New("video page unavailable")

// Request asks the page-side agent for a metadata record.
type Request struct {
	URL        string
	Transcript bool
	Frames     bool
}

// Agent answers extraction requests for a page.
type Agent interface {
	Extract(ctx context.Context, req Request) (*models.VideoMetadata, error)
}

// Options configures a PageAgent. Browser and Stats are optional.
type Options struct {
	HTTPClient   *http.Client
	WatchBaseURL string
	Browser      *Browser
	Stats        *StatsClient
	FrameCount   int
}

// PageAgent extracts metadata from a watch page, rendered by headless Chrome when a
// browser is configured and fetched over plain HTTP otherwise.
type PageAgent struct {
	client       *http.Client
	watchBaseURL string
	browser      *Browser
	stats        *StatsClient
	frameCount   int
}

func NewPageAgent(opts Options) *PageAgent {
	a := &PageAgent{
		client:       opts.HTTPClient,
		watchBaseURL: strings.TrimRight(opts.WatchBaseURL, "/"),
		browser:      opts.Browser,
		stats:        opts.Stats,
		frameCount:   opts.FrameCount,
	}
	if a.client == nil {
		a.client = &http.Client{}
	}
	if a.watchBaseURL == "" {
		a.watchBaseURL = "https://www.youtube.com"
	}
	if a.frameCount <= 0 {
		a.frameCount = 4
	}
	return a
}

func (a *PageAgent) Extract(ctx context.Context, req Request) (*models.VideoMetadata, error) {
	videoID := VideoID(req.URL)

	var tab *Tab
	if a.browser != nil {
		t, err := a.browser.Open(ctx, req.URL)
		if err != nil {
			log.Printf("Warning: Browser unavailable, falling back to plain fetch: %v", err)
		} else {
			tab = t
			defer tab.Close()
		}
	}

	page, err := a.pageHTML(ctx, tab, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageUnavailable, err)
	}

	video := &models.VideoMetadata{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		log.Printf("Warning: Failed to parse page HTML: %v", err)
	} else {
		*video = ParseMetadata(doc)
	}

	// Transcript, stats and frames come from independent sources and each fills its
	// own field, so they are gathered concurrently. None of them fails the extraction.
	var views, subscribers string
	g, gctx := errgroup.WithContext(ctx)

	if a.stats != nil && videoID != "" && (video.ViewCount == "" || video.SubscriberCount == "") {
		g.Go(func() error {
			var err error
			views, subscribers, err = a.stats.Lookup(gctx, videoID)
			if err != nil {
				log.Printf("Warning: YouTube stats lookup failed for %s: %v", videoID, err)
			}
			return nil
		})
	}

	if req.Transcript {
		g.Go(func() error {
			transcript, err := a.fetchTranscript(gctx, page, videoID)
			if err != nil {
				log.Printf("Could not fetch transcript for %s: %v", req.URL, err)
				return nil
			}
			video.Transcript = transcript
			return nil
		})
	}

	if req.Frames && tab != nil {
		g.Go(func() error {
			video.Frames = sampleFrames(gctx, tab, a.frameCount)
			return nil
		})
	}

	_ = g.Wait()

	if video.ViewCount == "" {
		video.ViewCount = views
	}
	if video.SubscriberCount == "" {
		video.SubscriberCount = subscribers
	}

	return video, nil
}

func (a *PageAgent) pageHTML(ctx context.Context, tab *Tab, pageURL string) (string, error) {
	if tab != nil {
		html, err := tab.HTML(ctx)
		if err == nil {
			return html, nil
		}
		log.Printf("Warning: %v, falling back to plain fetch", err)
	}
	body, err := a.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (a *PageAgent) watchURL(videoID string) string {
	return fmt.Sprintf("%s/watch?v=%s", a.watchBaseURL, videoID)
}

func (a *PageAgent) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
