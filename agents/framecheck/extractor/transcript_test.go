package extractor

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseCaptionTracks(t *testing.T) {
	page := `var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks": [{"baseUrl":"https://x/api/timedtext?v=a&lang=de","languageCode":"de"},{"baseUrl":"https://x/api/timedtext?v=a&lang=en","languageCode":"en"}],"audioTracks":[]}}};`

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		t.Fatalf("parseCaptionTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Got %d tracks, want 2", len(tracks))
	}
	if tracks[1].BaseURL != "https://x/api/timedtext?v=a&lang=en" {
		t.Errorf("BaseURL = %q, want unescaped ampersand", tracks[1].BaseURL)
	}

	if _, err := parseCaptionTracks(`{"videoDetails":{}}`); !errors.Is(err, errNoCaptions) {
		t.Errorf("Page without captions: err = %v, want errNoCaptions", err)
	}
	if _, err := parseCaptionTracks(`"captionTracks":[]`); !errors.Is(err, errNoCaptions) {
		t.Errorf("Empty track list: err = %v, want errNoCaptions", err)
	}
}

func TestPickTrack(t *testing.T) {
	tests := []struct {
		name   string
		tracks []captionTrack
		want   string
	}{
		{
			name:   "Prefers English",
			tracks: []captionTrack{{BaseURL: "fr", LanguageCode: "fr"}, {BaseURL: "en", LanguageCode: "en"}},
			want:   "en",
		},
		{
			name:   "Falls back to first",
			tracks: []captionTrack{{BaseURL: "ja", LanguageCode: "ja"}, {BaseURL: "ko", LanguageCode: "ko"}},
			want:   "ja",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickTrack(tt.tracks); got.BaseURL != tt.want {
				t.Errorf("pickTrack() = %q, want %q", got.BaseURL, tt.want)
			}
		})
	}
}

func TestDecodeTranscript(t *testing.T) {
	payload := `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
		`<text start="0" dur="1.5">it&amp;#39;s a</text>` +
		`<text start="1.5" dur="2">&amp;quot;test&amp;quot;</text>` +
		`<text start="3.5" dur="1">rock &amp;amp; roll</text>` +
		`</transcript>`

	got, err := decodeTranscript([]byte(payload))
	if err != nil {
		t.Fatalf("decodeTranscript failed: %v", err)
	}
	if want := `it's a "test" rock & roll`; got != want {
		t.Errorf("decodeTranscript() = %q, want %q", got, want)
	}

	if _, err := decodeTranscript([]byte("not xml <")); err == nil {
		t.Error("Expected error for malformed XML")
	}
}

func TestDecodeTranscriptTruncates(t *testing.T) {
	long := strings.Repeat("é", MaxTranscriptLength+50)
	got, err := decodeTranscript([]byte("<transcript><text>" + long + "</text></transcript>"))
	if err != nil {
		t.Fatalf("decodeTranscript failed: %v", err)
	}
	if n := utf8.RuneCountInString(got); n != MaxTranscriptLength {
		t.Errorf("Transcript has %d characters, want %d", n, MaxTranscriptLength)
	}
}
