package framecheck

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"time"
	"unicode/utf8"

	"framecheck/agents/framecheck/extractor"
	"framecheck/internal/models"
	"framecheck/shared/format"
	"framecheck/shared/storage"

	"github.com/google/uuid"
)

const (
	historyStorageKey  = "history"
	settingsStorageKey = "saveHistory"

	// MaxHistoryEntries is how many entries survive each append.
	MaxHistoryEntries = 5

	maxTitleLength = 40
)

var ErrEntryNotFound = errors.New("history entry not found")

// History is the rolling, newest-first list of past analyses and questions.
type History struct {
	store storage.Store
	now   func() time.Time
}

func NewHistory(store storage.Store) *History {
	return &History{store: store, now: time.Now}
}

func (h *History) List() ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if _, err := h.store.Get(historyStorageKey, &entries); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// Append prepends entry and drops everything past MaxHistoryEntries. A missing ID or
// timestamp is filled in.
func (h *History) Append(entry models.HistoryEntry) (models.HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = h.now()
	}

	entries, err := h.List()
	if err != nil {
		return entry, err
	}
	entries = append([]models.HistoryEntry{entry}, entries...)
	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}

	if err := h.store.Set(historyStorageKey, entries); err != nil {
		return entry, fmt.Errorf("failed to save history: %w", err)
	}
	return entry, nil
}

func (h *History) Clear() error {
	if err := h.store.Set(historyStorageKey, []models.HistoryEntry{}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Get looks an entry up by its stable ID.
func (h *History) Get(id string) (models.HistoryEntry, error) {
	entries, err := h.List()
	if err != nil {
		return models.HistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.HistoryEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Enabled reports whether new results are recorded. It defaults to false.
func (h *History) Enabled() (bool, error) {
	var enabled bool
	if _, err := h.store.Get(settingsStorageKey, &enabled); err != nil {
		return false, fmt.Errorf("failed to load history setting: %w", err)
	}
	return enabled, nil
}

func (h *History) SetEnabled(enabled bool) error {
	if err := h.store.Set(settingsStorageKey, enabled); err != nil {
		return fmt.Errorf("failed to save history setting: %w", err)
	}
	return nil
}

// HistoryItem is one row of the rendered history list.
type HistoryItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Label    string `json:"label"`
	Question string `json:"question,omitempty"`
}

func RenderHistory(entries []models.HistoryEntry) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		title := e.VideoTitle
		if title == "" {
			title = "Unknown Video"
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			title = string([]rune(title)[:maxTitleLength]) + "..."
		}

		label := "Q&A"
		if e.Type == models.EntryAnalysis {
			label = e.AnalysisMode.Label()
		}

		var question string
		if e.Question != "" {
			question = `"` + e.Question + `"`
		}

		items = append(items, HistoryItem{
			ID:       e.ID,
			Title:    title,
			Label:    label,
			Question: question,
		})
	}
	return items
}

// ReplayHTML renders a stored entry into the result area.
func ReplayHTML(e models.HistoryEntry) string {
	out := fmt.Sprintf(`<strong>%s</strong><br>`, html.EscapeString(e.VideoTitle))
	// Entries are persisted, so the URL is checked again before it becomes a link
	if u, err := url.Parse(e.VideoURL); err == nil && extractor.IsWebURL(u) {
		out += fmt.Sprintf(`<a href="%s" target="_blank">Open video</a><br>`, html.EscapeString(e.VideoURL))
	}
	out += "<br>"
	if e.Type == models.EntryAnalysis {
		return out + format.Format(e.Result)
	}
	return out + questionHeader(e.Question) + format.Format(e.Answer)
}

func questionHeader(question string) string {
	return "<strong>Q: " + html.EscapeString(question) + "</strong><br><br>"
}
