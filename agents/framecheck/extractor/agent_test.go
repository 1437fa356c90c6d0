package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const captionXML = `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0" dur="1">hello</text><text start="1" dur="1">world</text></transcript>`

func watchPage(title, captionURL string) string {
	captions := ""
	if captionURL != "" {
		captions = fmt.Sprintf(`<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s","languageCode":"en"}]}}};</script>`, captionURL)
	}
	return fmt.Sprintf(`<html><head>
		<meta name="title" content="%s">
		<meta name="description" content="A test video">
		<meta itemprop="interactionCount" content="2048">
		</head><body>
		<span itemprop="author"><link itemprop="name" content="Test Channel"></span>
		%s</body></html>`, title, captions)
}

func newYouTubeServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if r.URL.Query().Get("v") == "nocaps" {
				fmt.Fprint(w, watchPage("No Captions", ""))
				return
			}
			fmt.Fprint(w, watchPage("Watch Page", srv.URL+"/api/timedtext?lang=en"))
		case "/shorts/abc":
			fmt.Fprint(w, watchPage("Short Without Captions", ""))
		case "/shorts/nocaps":
			fmt.Fprint(w, watchPage("No Captions Anywhere", ""))
		case "/api/timedtext":
			fmt.Fprint(w, captionXML)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPageAgentExtract(t *testing.T) {
	srv := newYouTubeServer(t)
	agent := NewPageAgent(Options{HTTPClient: srv.Client(), WatchBaseURL: srv.URL})

	tests := []struct {
		name           string
		path           string
		transcript     bool
		wantTitle      string
		wantTranscript string
	}{
		{
			name:           "Watch page with captions",
			path:           "/watch?v=abc",
			transcript:     true,
			wantTitle:      "Watch Page",
			wantTranscript: "hello world",
		},
		{
			name:           "Short falls back to watch page for captions",
			path:           "/shorts/abc",
			transcript:     true,
			wantTitle:      "Short Without Captions",
			wantTranscript: "hello world",
		},
		{
			name:           "Transcript not requested",
			path:           "/watch?v=abc",
			transcript:     false,
			wantTitle:      "Watch Page",
			wantTranscript: "",
		},
		{
			name:           "No captions anywhere",
			path:           "/shorts/nocaps",
			transcript:     true,
			wantTitle:      "No Captions Anywhere",
			wantTranscript: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			video, err := agent.Extract(context.Background(), Request{
				URL:        srv.URL + tt.path,
				Transcript: tt.transcript,
				Frames:     true,
			})
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if video.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", video.Title, tt.wantTitle)
			}
			if video.Channel != "Test Channel" {
				t.Errorf("Channel = %q", video.Channel)
			}
			if video.ViewCount != "2,048 views" {
				t.Errorf("ViewCount = %q", video.ViewCount)
			}
			if video.Transcript != tt.wantTranscript {
				t.Errorf("Transcript = %q, want %q", video.Transcript, tt.wantTranscript)
			}
			if len(video.Frames) != 0 {
				t.Errorf("Got %d frames without a browser", len(video.Frames))
			}
		})
	}
}

func TestPageAgentExtractUnavailable(t *testing.T) {
	srv := newYouTubeServer(t)
	agent := NewPageAgent(Options{HTTPClient: srv.Client(), WatchBaseURL: srv.URL})

	_, err := agent.Extract(context.Background(), Request{URL: srv.URL + "/missing"})
	if !errors.Is(err, ErrPageUnavailable) {
		t.Errorf("Expected ErrPageUnavailable, got %v", err)
	}
}

func TestPageAgentFillsCountsFromStats(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="title" content="Sparse"></head><body></body></html>`)
	}))
	defer page.Close()

	stats := newStatsServer(t, false)
	client, err := NewStatsClient(context.Background(), "test-key", statsOptions(stats)...)
	if err != nil {
		t.Fatalf("NewStatsClient failed: %v", err)
	}

	agent := NewPageAgent(Options{HTTPClient: page.Client(), WatchBaseURL: page.URL, Stats: client})
	video, err := agent.Extract(context.Background(), Request{URL: page.URL + "/watch?v=vid1"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if video.ViewCount != "1,234,567 views" {
		t.Errorf("ViewCount = %q", video.ViewCount)
	}
	if video.SubscriberCount != "56,000 subscribers" {
		t.Errorf("SubscriberCount = %q", video.SubscriberCount)
	}
}
