package framecheck

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"framecheck/internal/models"
)

func TestHistoryAppendCapsAndOrders(t *testing.T) {
	history := NewHistory(newTestStore(t))

	for i := 1; i <= 8; i++ {
		if _, err := history.Append(models.HistoryEntry{
			Type:       models.EntryAnalysis,
			VideoTitle: fmt.Sprintf("Video %d", i),
		}); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}

		entries, err := history.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) > MaxHistoryEntries {
			t.Fatalf("History has %d entries after %d appends", len(entries), i)
		}
		if entries[0].VideoTitle != fmt.Sprintf("Video %d", i) {
			t.Fatalf("First entry = %q after appending Video %d", entries[0].VideoTitle, i)
		}
	}

	entries, _ := history.List()
	for i, e := range entries {
		if want := fmt.Sprintf("Video %d", 8-i); e.VideoTitle != want {
			t.Errorf("entries[%d] = %q, want %q", i, e.VideoTitle, want)
		}
	}
}

func TestHistoryAppendAssignsIDAndTimestamp(t *testing.T) {
	history := NewHistory(newTestStore(t))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	history.now = func() time.Time { return fixed }

	a, err := history.Append(models.HistoryEntry{Type: models.EntryQuestion})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	b, _ := history.Append(models.HistoryEntry{Type: models.EntryQuestion})

	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Errorf("IDs not unique: %q, %q", a.ID, b.ID)
	}
	if !a.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", a.Timestamp, fixed)
	}

	kept, err := history.Append(models.HistoryEntry{ID: "given", Type: models.EntryQuestion})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if kept.ID != "given" {
		t.Errorf("Existing ID replaced with %q", kept.ID)
	}
}

func TestHistoryGetByStableID(t *testing.T) {
	history := NewHistory(newTestStore(t))

	first, _ := history.Append(models.HistoryEntry{Type: models.EntryAnalysis, VideoTitle: "First"})
	_, _ = history.Append(models.HistoryEntry{Type: models.EntryAnalysis, VideoTitle: "Second"})

	// The first entry has moved from position 0 to 1; the ID still finds it.
	got, err := history.Get(first.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.VideoTitle != "First" {
		t.Errorf("Get returned %q", got.VideoTitle)
	}

	if err := history.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := history.Get(first.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound after clear, got %v", err)
	}
	entries, _ := history.List()
	if len(entries) != 0 {
		t.Errorf("History has %d entries after clear", len(entries))
	}
}

func TestHistoryEnabled(t *testing.T) {
	history := NewHistory(newTestStore(t))

	enabled, err := history.Enabled()
	if err != nil {
		t.Fatalf("Enabled failed: %v", err)
	}
	if enabled {
		t.Error("History saving should default to off")
	}

	if err := history.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	if enabled, _ := history.Enabled(); !enabled {
		t.Error("History saving not persisted")
	}
}

func TestRenderHistory(t *testing.T) {
	entries := []models.HistoryEntry{
		{ID: "1", Type: models.EntryAnalysis, AnalysisMode: models.ModeVerify, VideoTitle: "Short title"},
		{ID: "2", Type: models.EntryAnalysis, AnalysisMode: models.ModeDeep, VideoTitle: strings.Repeat("x", 45)},
		{ID: "3", Type: models.EntryQuestion, VideoTitle: "Asked", Question: "Is it true?"},
		{ID: "4", Type: models.EntryAnalysis},
	}

	items := RenderHistory(entries)

	tests := []struct {
		index        int
		wantTitle    string
		wantLabel    string
		wantQuestion string
	}{
		{0, "Short title", "Verify", ""},
		{1, strings.Repeat("x", 40) + "...", "Deep Analysis", ""},
		{2, "Asked", "Q&A", `"Is it true?"`},
		{3, "Unknown Video", "Analysis", ""},
	}

	for _, tt := range tests {
		t.Run(tt.wantLabel, func(t *testing.T) {
			item := items[tt.index]
			if item.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", item.Title, tt.wantTitle)
			}
			if item.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", item.Label, tt.wantLabel)
			}
			if item.Question != tt.wantQuestion {
				t.Errorf("Question = %q, want %q", item.Question, tt.wantQuestion)
			}
			if item.ID != entries[tt.index].ID {
				t.Errorf("ID = %q, want %q", item.ID, entries[tt.index].ID)
			}
		})
	}
}

func TestReplayHTML(t *testing.T) {
	analysis := models.HistoryEntry{
		Type:       models.EntryAnalysis,
		VideoURL:   "https://www.youtube.com/watch?v=a&t=1",
		VideoTitle: "A <b>title</b>",
		Result:     "**Verdict**\nok",
	}
	want := `<strong>A &lt;b&gt;title&lt;/b&gt;</strong><br><a href="https://www.youtube.com/watch?v=a&amp;t=1" target="_blank">Open video</a><br><br><strong>Verdict</strong><br>ok`
	if got := ReplayHTML(analysis); got != want {
		t.Errorf("ReplayHTML(analysis) =\n%s\nwant\n%s", got, want)
	}

	question := models.HistoryEntry{
		Type:       models.EntryQuestion,
		VideoURL:   "https://www.youtube.com/shorts/x",
		VideoTitle: "Short",
		Question:   "Why?",
		Answer:     "Because",
	}
	got := ReplayHTML(question)
	if !strings.HasSuffix(got, "<strong>Q: Why?</strong><br><br>Because") {
		t.Errorf("ReplayHTML(question) = %s", got)
	}
}

func TestReplayHTMLDropsNonWebLinks(t *testing.T) {
	for _, videoURL := range []string{"javascript:alert(1)//youtube.com/watch", "data:text/html,x", ""} {
		t.Run(videoURL, func(t *testing.T) {
			e := models.HistoryEntry{
				Type:       models.EntryAnalysis,
				VideoURL:   videoURL,
				VideoTitle: "T",
				Result:     "ok",
			}
			want := `<strong>T</strong><br><br>ok`
			if got := ReplayHTML(e); got != want {
				t.Errorf("ReplayHTML = %q, want %q", got, want)
			}
		})
	}
}
