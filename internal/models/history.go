package models

import "time"

// EntryType distinguishes analyses from question/answer exchanges in the history.
type EntryType string

const (
	EntryAnalysis EntryType = "analysis"
	EntryQuestion EntryType = "question"
)

// HistoryEntry is one persisted past analysis or question.
type HistoryEntry struct {
	ID           string       `json:"id"`
	Type         EntryType    `json:"type"`
	AnalysisMode AnalysisMode `json:"analysisMode,omitempty"`
	VideoURL     string       `json:"videoUrl"`
	VideoTitle   string       `json:"videoTitle"`
	Result       string       `json:"result,omitempty"`
	Question     string       `json:"question,omitempty"`
	Answer       string       `json:"answer,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// CachedResult is the last rendered output, valid only for the exact URL it was produced on.
type CachedResult struct {
	URL       string    `json:"url"`
	HTML      string    `json:"html"`
	Timestamp time.Time `json:"timestamp"`
}
