package extractor

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxTranscriptLength caps the transcript in characters to stay within the prompt budget.
const MaxTranscriptLength = 8000

var captionTracksPattern = regexp.MustCompile(`"captionTracks":\s*(\[.*?\])`)

var errNoCaptions = errors.New("no caption tracks")

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

// parseCaptionTracks pulls the caption track list out of the player response embedded in a watch page.
func parseCaptionTracks(page string) ([]captionTrack, error) {
	m := captionTracksPattern.FindStringSubmatch(page)
	if m == nil {
		return nil, errNoCaptions
	}
	var tracks []captionTrack
	if err := json.Unmarshal([]byte(m[1]), &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, errNoCaptions
	}
	return tracks, nil
}

// pickTrack prefers English and otherwise takes the first track.
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.LanguageCode == "en" {
			return t
		}
	}
	return tracks[0]
}

type timedText struct {
	Texts []string `xml:"text"`
}

// Caption payloads are often escaped twice; these survive XML decoding.
var doubleEscaped = [][2]string{
	{"&#39;", "'"},
	{"&quot;", `"`},
	{"&amp;", "&"},
}

// decodeTranscript joins the text nodes of a caption XML document with single spaces.
func decodeTranscript(payload []byte) (string, error) {
	var doc timedText
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return "", fmt.Errorf("failed to parse caption XML: %w", err)
	}

	out := strings.Join(doc.Texts, " ")
	for _, r := range doubleEscaped {
		out = strings.ReplaceAll(out, r[0], r[1])
	}
	return truncateRunes(out, MaxTranscriptLength), nil
}

// fetchTranscript resolves the caption track from page and downloads it. If page has no
// caption data, the watch page for videoID is fetched and searched instead.
func (a *PageAgent) fetchTranscript(ctx context.Context, page, videoID string) (string, error) {
	tracks, err := parseCaptionTracks(page)
	if errors.Is(err, errNoCaptions) && videoID != "" {
		watch, ferr := a.fetch(ctx, a.watchURL(videoID))
		if ferr != nil {
			return "", ferr
		}
		tracks, err = parseCaptionTracks(string(watch))
	}
	if err != nil {
		return "", err
	}

	payload, err := a.fetch(ctx, pickTrack(tracks).BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch captions: %w", err)
	}
	return decodeTranscript(payload)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
