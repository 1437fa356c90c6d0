package models

import "fmt"

// AnalysisMode selects the prompt template used for an analysis.
type AnalysisMode string

const (
	ModeVerify  AnalysisMode = "verify"
	ModeSummary AnalysisMode = "summary"
	ModeDeep    AnalysisMode = "deep"
)

// Label returns the display name shown in the popup and history list.
func (m AnalysisMode) Label() string {
	switch m {
	case ModeVerify:
		return "Verify"
	case ModeSummary:
		return "Summary"
	case ModeDeep:
		return "Deep Analysis"
	default:
		return "Analysis"
	}
}

// ParseAnalysisMode maps the selector value to a mode. An empty value selects deep analysis.
func ParseAnalysisMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(s) {
	case "":
		return ModeDeep, nil
	case ModeVerify, ModeSummary, ModeDeep:
		return AnalysisMode(s), nil
	}
	return "", fmt.Errorf("unknown analysis mode %q (want verify, summary or deep)", s)
}

// Frame is one JPEG still sampled from the video player.
type Frame struct {
	Timestamp float64 `json:"timestamp"`
	Image     string  `json:"image"` // base64, no data: prefix
}

// VideoMetadata is everything scraped from a watch page for one request. It is never persisted.
type VideoMetadata struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Channel         string  `json:"channel"`
	SubscriberCount string  `json:"subscriberCount"`
	ViewCount       string  `json:"viewCount"`
	Transcript      string  `json:"transcript"`
	Frames          []Frame `json:"frames"`
}

// MinTranscriptLength is the length a transcript must exceed before it is sent to the model.
const MinTranscriptLength = 100

func (v *VideoMetadata) HasTranscript() bool {
	return len(v.Transcript) > MinTranscriptLength
}

func (v *VideoMetadata) HasFrames() bool {
	return len(v.Frames) > 0
}
