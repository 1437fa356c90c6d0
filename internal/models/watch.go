package models

import "time"

// WatchReport is the digest of one watch run.
type WatchReport struct {
	Date     time.Time         `json:"date"`
	Mode     AnalysisMode      `json:"mode"`
	Videos   []WatchReportItem `json:"videos"`
	Analyzed int               `json:"analyzed"`
	Failed   int               `json:"failed"`
	Skipped  int               `json:"skipped"`
}

// WatchReportItem is the outcome for one watched URL. ResultHTML holds formatted
// model output; Error is set instead when the analysis failed.
type WatchReportItem struct {
	URL        string `json:"url"`
	ResultHTML string `json:"resultHtml,omitempty"`
	Error      string `json:"error,omitempty"`
}
