package framecheck

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"framecheck/internal/models"
	"framecheck/shared/ai"
	"framecheck/shared/config"
	"framecheck/shared/scheduler"
)

// WatchMetrics summarizes one watch run.
type WatchMetrics struct {
	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// GetSummary implements the scheduler.Metrics interface
func (m WatchMetrics) GetSummary() string {
	return fmt.Sprintf("%d videos analyzed, %d failed, %d skipped", m.Analyzed, m.Failed, m.Skipped)
}

// Notifier delivers the digest of a watch run.
type Notifier interface {
	SendReport(report *models.WatchReport) error
}

// WatchAgent re-analyzes a fixed list of videos on the watch schedule. Results land
// in the result cache and, when enabled, in the history. A non-nil notifier also
// receives a digest after each run.
type WatchAgent struct {
	config   *config.WatchConfig
	popup    *Popup
	notifier Notifier
	pause    time.Duration
	now      func() time.Time
}

func NewWatchAgent(cfg *config.WatchConfig, popup *Popup, notifier Notifier) *WatchAgent {
	return &WatchAgent{
		config:   cfg,
		popup:    popup,
		notifier: notifier,
		pause:    2 * time.Second,
		now:      time.Now,
	}
}

func (w *WatchAgent) Name() string {
	return "FrameCheck Watch"
}

func (w *WatchAgent) Initialize() error {
	log.Printf("Initializing %s...", w.Name())

	if len(w.config.URLs) == 0 {
		return fmt.Errorf("no watch URLs configured (watch.urls)")
	}
	if _, err := w.popup.Dispatch(context.Background(), Command{Action: ActionInit}); err != nil {
		return fmt.Errorf("failed to load popup state: %w", err)
	}
	if !w.popup.HasKey() {
		return ErrMissingCredential
	}

	log.Printf("Watching %d videos (mode=%s)", len(w.config.URLs), w.mode())
	return nil
}

func (w *WatchAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	metrics := WatchMetrics{}
	report := &models.WatchReport{
		Date: w.now(),
		Mode: models.AnalysisMode(w.mode()),
	}

	for i, url := range w.config.URLs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("Analyzing video %d/%d: %s", i+1, len(w.config.URLs), url)

		v, err := w.popup.Dispatch(ctx, Command{
			Action:   ActionAnalyze,
			URL:      url,
			Mode:     w.mode(),
			Language: w.config.Language,
		})
		if err != nil {
			return fmt.Errorf("failed to analyze %s: %w", url, err)
		}

		switch {
		case v.Err == nil:
			metrics.Analyzed++
			report.Videos = append(report.Videos, models.WatchReportItem{URL: url, ResultHTML: v.ResultHTML})
		case errors.Is(v.Err, ErrWrongPageContext):
			log.Printf("Warning: Skipping %s, not a YouTube video", url)
			metrics.Skipped++
		case errors.Is(v.Err, ai.ErrQuotaExceeded):
			// Retrying now only burns more quota
			metrics.Failed += len(w.config.URLs) - i
			report.Videos = append(report.Videos, models.WatchReportItem{URL: url, Error: v.Err.Error()})
			return w.finish(events, metrics, report, startTime, v.Err)
		default:
			log.Printf("Warning: Failed to analyze %s: %v", url, v.Err)
			metrics.Failed++
			report.Videos = append(report.Videos, models.WatchReportItem{URL: url, Error: v.Err.Error()})
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("%s: %w", url, v.Err), time.Since(startTime))
			}
		}

		if i < len(w.config.URLs)-1 && w.pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.pause):
			}
		}
	}

	return w.finish(events, metrics, report, startTime, nil)
}

func (w *WatchAgent) finish(events *scheduler.AgentEvents, metrics WatchMetrics, report *models.WatchReport, startTime time.Time, cause error) error {
	duration := time.Since(startTime)
	report.Analyzed = metrics.Analyzed
	report.Failed = metrics.Failed
	report.Skipped = metrics.Skipped

	if metrics.Analyzed == 0 && metrics.Failed > 0 {
		err := fmt.Errorf("no video could be analyzed (%d failed)", metrics.Failed)
		if cause != nil {
			err = fmt.Errorf("no video could be analyzed: %w", cause)
		}
		return err
	}
	if cause != nil && events != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(fmt.Errorf("run stopped early: %w", cause), duration)
	}

	if w.notifier != nil {
		if err := w.notifier.SendReport(report); err != nil {
			log.Printf("Warning: Failed to send watch digest: %v", err)
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("failed to send digest: %w", err), time.Since(startTime))
			}
		}
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, duration)
	}
	log.Printf("Watch run complete: %s", metrics.GetSummary())
	return nil
}

func (w *WatchAgent) mode() string {
	if w.config.Mode == "" {
		return string(models.ModeDeep)
	}
	return w.config.Mode
}
