// Package framecheck is the popup controller: it holds the popup state and maps
// named UI actions onto the extractor, prompt builder, AI client and formatter.
package framecheck

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"

	"framecheck/agents/framecheck/extractor"
	"framecheck/internal/models"
	"framecheck/shared/ai"
	"framecheck/shared/format"
	"framecheck/shared/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Action names a popup control event.
type Action string

const (
	ActionInit           Action = "init"
	ActionSaveKey        Action = "save-key"
	ActionEditKey        Action = "edit-key"
	ActionDeleteKey      Action = "delete-key"
	ActionToggleSettings Action = "toggle-settings"
	ActionAnalyze        Action = "analyze"
	ActionAsk            Action = "ask"
	ActionQuestionInput  Action = "question-input"
	ActionToggleHistory  Action = "toggle-history"
	ActionClearHistory   Action = "clear-history"
	ActionReplay         Action = "replay"
)

// Command is one UI event. Only the fields its action uses are read.
type Command struct {
	Action Action `json:"action"`
	// URL is the active page. An empty URL keeps the previous one.
	URL      string `json:"url,omitempty"`
	Key      string `json:"key,omitempty"`
	Confirm  bool   `json:"confirm,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Language string `json:"language,omitempty"`
	Question string `json:"question,omitempty"`
	Enabled  bool   `json:"enabled,omitempty"`
	ID       string `json:"id,omitempty"`
}

// MaxQuestionWords is the longest question the ask action accepts.
const MaxQuestionWords = 50

const (
	msgKeyRequired      = "<strong>API Key Required</strong><br>Please add your Gemini API key above to use FrameCheck AI."
	msgNoKey            = `<span class="notice">Add your API key above to start analyzing videos.</span>`
	msgIdle             = "Navigate to a YouTube video and click Analyze."
	msgWrongPage        = "Please open a YouTube video or Short."
	msgAnalysisQuota    = "<strong>API Quota Exceeded</strong><br>The free tier limit has been reached.<br>Please wait a minute and try again."
	msgQuestionQuota    = "<strong>API Quota Exceeded</strong><br>Please wait a minute and try again."
	msgProviderQuota    = "<strong>API Quota Exceeded</strong><br>Please wait a few moments before trying again."
	msgEmptyQuestion    = "Please enter a question about the video."
	msgQuestionTooLong  = "Question too long. Please limit to 50 words."
	alertEmptyKey       = "Please enter an API key"
	alertInvalidKey     = `Invalid API key format. Gemini API keys start with "AIza"`
	providerQuotaMarker = "Quota exceeded"
	unknownTitle        = "Unknown Title"
)

var (
	ErrMissingCredential = errors.New("API key required")
	ErrWrongPageContext  = errors.New("not a YouTube video page")
	ErrUnknownAction     = errors.New("unknown action")
)

// PopupOptions wires a Popup to its collaborators.
type PopupOptions struct {
	Store     storage.Store
	Extractor extractor.Agent
	Sender    ai.Sender
	// Language is used when a command does not select one.
	Language string
	// OnProgress receives status lines while an analysis or question runs.
	OnProgress func(status string)
}

type popupState struct {
	loaded          bool
	url             string
	apiKey          string
	settingsVisible bool
	editing         bool
	cached          bool
	resultHTML      string
	wordCount       int
	// failure is the user-facing error of the current command, if any.
	failure error
}

type handler func(ctx context.Context, cmd Command, v *View) error

// Popup is the popup controller. Dispatch calls are serialized, so a second click on
// the same control waits for the first to finish.
type Popup struct {
	mu       sync.Mutex
	state    popupState
	handlers map[Action]handler

	keys       *KeyStore
	cache      *ResultCache
	history    *History
	extractor  extractor.Agent
	sender     ai.Sender
	languages  *LanguageResolver
	onProgress func(string)
}

func NewPopup(opts PopupOptions) *Popup {
	p := &Popup{
		state:      popupState{settingsVisible: true},
		keys:       NewKeyStore(opts.Store),
		cache:      NewResultCache(opts.Store),
		history:    NewHistory(opts.Store),
		extractor:  opts.Extractor,
		sender:     opts.Sender,
		languages:  NewLanguageResolver(opts.Language),
		onProgress: opts.OnProgress,
	}
	if p.onProgress == nil {
		p.onProgress = func(status string) {
			log.Printf("FrameCheck: %s", status)
		}
	}

	p.handlers = map[Action]handler{
		ActionInit:           p.handleInit,
		ActionSaveKey:        p.handleSaveKey,
		ActionEditKey:        p.handleEditKey,
		ActionDeleteKey:      p.handleDeleteKey,
		ActionToggleSettings: p.handleToggleSettings,
		ActionAnalyze:        p.handleAnalyze,
		ActionAsk:            p.handleAsk,
		ActionQuestionInput:  p.handleQuestionInput,
		ActionToggleHistory:  p.handleToggleHistory,
		ActionClearHistory:   p.handleClearHistory,
		ActionReplay:         p.handleReplay,
	}
	return p
}

// Dispatch runs the handler for cmd.Action and returns the resulting view. User-facing
// failures are rendered into the view; the error is reserved for storage failures and
// unknown actions.
func (p *Popup) Dispatch(ctx context.Context, cmd Command) (*View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.handlers[cmd.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	if !p.state.loaded {
		if err := p.loadKey(); err != nil {
			return nil, err
		}
		p.state.resultHTML = p.defaultResult()
	}
	if cmd.URL != "" {
		p.state.url = cmd.URL
	}

	p.state.failure = nil
	v := &View{}
	if err := h(ctx, cmd, v); err != nil {
		return nil, fmt.Errorf("%s failed: %w", cmd.Action, err)
	}
	if err := p.render(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Popup) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.url
}

func (p *Popup) HasKey() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.apiKey != ""
}

func (p *Popup) SettingsVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.settingsVisible
}

func (p *Popup) Cached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.cached
}

func (p *Popup) loadKey() error {
	key, err := p.keys.Load()
	if err != nil {
		return err
	}
	p.state.apiKey = key
	p.state.loaded = true
	return nil
}

func (p *Popup) defaultResult() string {
	if p.state.apiKey == "" {
		return msgNoKey
	}
	return msgIdle
}

func (p *Popup) render(v *View) error {
	hasKey := p.state.apiKey != ""

	v.URL = p.state.url
	v.HasKey = hasKey
	if hasKey {
		v.MaskedKey = Mask(p.state.apiKey)
	}
	v.KeyInputVisible = p.state.settingsVisible && (!hasKey || p.state.editing)
	v.KeyMaskVisible = p.state.settingsVisible && hasKey && !p.state.editing
	v.Controls = controls(hasKey)
	v.ResultHTML = p.state.resultHTML
	v.Cached = p.state.cached
	v.WordCount = p.state.wordCount
	v.OverWordLimit = p.state.wordCount > MaxQuestionWords
	if p.state.failure != nil {
		v.Err = p.state.failure
		v.Error = p.state.failure.Error()
	}

	enabled, err := p.history.Enabled()
	if err != nil {
		return err
	}
	entries, err := p.history.List()
	if err != nil {
		return err
	}
	v.SaveHistory = enabled
	v.History = RenderHistory(entries)
	return nil
}

func (p *Popup) handleInit(ctx context.Context, cmd Command, v *View) error {
	if err := p.loadKey(); err != nil {
		return err
	}
	p.state.editing = false
	p.state.cached = false
	p.state.resultHTML = p.defaultResult()

	// A cached result is shown even without a key; the feature controls stay disabled
	if !extractor.IsVideoPage(p.state.url) {
		return nil
	}
	cached, ok, err := p.cache.Restore(p.state.url)
	if err != nil {
		log.Printf("Could not restore cached result: %v", err)
		return nil
	}
	if ok {
		p.state.resultHTML = cached
		p.state.cached = true
	}
	return nil
}

func (p *Popup) handleSaveKey(ctx context.Context, cmd Command, v *View) error {
	key, err := p.keys.Save(cmd.Key)
	switch {
	case errors.Is(err, ErrEmptyKey):
		v.Alert = alertEmptyKey
		return nil
	case errors.Is(err, ErrInvalidKeyFormat):
		v.Alert = alertInvalidKey
		return nil
	case err != nil:
		return err
	}

	p.state.apiKey = key
	p.state.editing = false
	if !p.state.cached {
		p.state.resultHTML = msgIdle
	}
	return nil
}

func (p *Popup) handleEditKey(ctx context.Context, cmd Command, v *View) error {
	p.state.editing = true
	v.EditValue = p.state.apiKey
	return nil
}

func (p *Popup) handleDeleteKey(ctx context.Context, cmd Command, v *View) error {
	if !cmd.Confirm {
		return nil
	}
	if err := p.keys.Delete(); err != nil {
		return err
	}
	p.state.apiKey = ""
	p.state.editing = false
	p.state.cached = false
	p.state.resultHTML = msgNoKey
	return nil
}

func (p *Popup) handleToggleSettings(ctx context.Context, cmd Command, v *View) error {
	p.state.settingsVisible = !p.state.settingsVisible
	return nil
}

func (p *Popup) handleAnalyze(ctx context.Context, cmd Command, v *View) error {
	if err := p.requireKey(); err != nil {
		return nil
	}

	mode, err := models.ParseAnalysisMode(cmd.Mode)
	if err != nil {
		p.showError(err)
		return nil
	}
	p.progress(fmt.Sprintf("Running %s... Capturing video data.", mode.Label()))

	if err := p.requireVideoPage(); err != nil {
		return nil
	}
	url := p.state.url

	video, err := p.extractor.Extract(ctx, extractor.Request{URL: url, Transcript: true, Frames: true})
	if err != nil {
		p.showError(err)
		return nil
	}
	if video.Title == "" {
		video.Title = unknownTitle
	}

	hasTranscript := video.HasTranscript()
	hasFrames := video.HasFrames()
	language := p.languages.Resolve(cmd.Language, video.Transcript, video.Description, video.Title)
	prompt := ai.BuildPrompt(mode, video, url, hasTranscript, hasFrames, language)
	p.progress(analysisStatus(video))

	var frames []models.Frame
	if hasFrames {
		frames = video.Frames
	}
	raw, err := p.sender.Send(ctx, p.state.apiKey, prompt, frames)
	if err != nil {
		p.showSendError(err, msgAnalysisQuota)
		return nil
	}

	p.showResult(url, format.Format(raw))
	p.record(models.HistoryEntry{
		Type:         models.EntryAnalysis,
		AnalysisMode: mode,
		VideoURL:     url,
		VideoTitle:   video.Title,
		Result:       raw,
	})
	return nil
}

func (p *Popup) handleAsk(ctx context.Context, cmd Command, v *View) error {
	if err := p.requireKey(); err != nil {
		return nil
	}

	question := strings.TrimSpace(cmd.Question)
	if err := validateQuestion(question); err != nil {
		p.state.resultHTML = html.EscapeString(err.Error())
		p.state.failure = err
		return nil
	}
	p.progress("Fetching video data...")

	if err := p.requireVideoPage(); err != nil {
		return nil
	}
	url := p.state.url

	video, err := p.extractor.Extract(ctx, extractor.Request{URL: url, Transcript: true})
	if err != nil {
		p.showError(err)
		return nil
	}
	p.progress("AI is answering your question...")

	language := p.languages.Resolve(cmd.Language, video.Transcript, video.Description, video.Title)
	prompt := ai.BuildQuestionPrompt(video, url, video.HasTranscript(), question, language)

	raw, err := p.sender.Send(ctx, p.state.apiKey, prompt, nil)
	if err != nil {
		p.showSendError(err, msgQuestionQuota)
		return nil
	}

	p.showResult(url, questionHeader(question)+format.Format(raw))
	p.record(models.HistoryEntry{
		Type:       models.EntryQuestion,
		VideoURL:   url,
		VideoTitle: video.Title,
		Question:   question,
		Answer:     raw,
	})
	return nil
}

func (p *Popup) handleQuestionInput(ctx context.Context, cmd Command, v *View) error {
	p.state.wordCount = CountWords(cmd.Question)
	return nil
}

func (p *Popup) handleToggleHistory(ctx context.Context, cmd Command, v *View) error {
	return p.history.SetEnabled(cmd.Enabled)
}

func (p *Popup) handleClearHistory(ctx context.Context, cmd Command, v *View) error {
	return p.history.Clear()
}

func (p *Popup) handleReplay(ctx context.Context, cmd Command, v *View) error {
	entry, err := p.history.Get(cmd.ID)
	if errors.Is(err, ErrEntryNotFound) {
		// Cleared or rotated out since the list was rendered
		return nil
	}
	if err != nil {
		return err
	}
	p.state.resultHTML = ReplayHTML(entry)
	return nil
}

func (p *Popup) requireKey() error {
	if p.state.apiKey == "" {
		p.state.resultHTML = msgKeyRequired
		p.state.failure = ErrMissingCredential
		return ErrMissingCredential
	}
	return nil
}

func (p *Popup) requireVideoPage() error {
	if !extractor.IsVideoPage(p.state.url) {
		p.state.resultHTML = msgWrongPage
		p.state.failure = ErrWrongPageContext
		return ErrWrongPageContext
	}
	return nil
}

func (p *Popup) progress(status string) {
	p.state.resultHTML = html.EscapeString(status)
	p.onProgress(status)
}

func (p *Popup) showError(err error) {
	p.state.resultHTML = "Error: " + html.EscapeString(err.Error())
	p.state.failure = err
}

func (p *Popup) showSendError(err error, quotaMessage string) {
	var providerErr *ai.ProviderError
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		p.state.resultHTML = quotaMessage
		p.state.failure = err
	case errors.As(err, &providerErr) && strings.Contains(providerErr.Message, providerQuotaMarker):
		p.state.resultHTML = msgProviderQuota
		p.state.failure = err
	default:
		p.showError(err)
	}
}

// showResult renders a fresh result and caches it for url.
func (p *Popup) showResult(url, result string) {
	p.state.resultHTML = result
	p.state.cached = true
	if err := p.cache.Store(url, result); err != nil {
		log.Printf("Warning: %v", err)
	}
}

// record appends entry to the history when saving is enabled.
func (p *Popup) record(entry models.HistoryEntry) {
	enabled, err := p.history.Enabled()
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	if !enabled {
		return
	}
	if _, err := p.history.Append(entry); err != nil {
		log.Printf("Warning: %v", err)
	}
}

func analysisStatus(video *models.VideoMetadata) string {
	var parts []string
	if video.HasFrames() {
		parts = append(parts, fmt.Sprintf("%d video frames captured", len(video.Frames)))
	}
	if video.HasTranscript() {
		parts = append(parts, "transcript found")
	}
	if len(parts) == 0 {
		return "Analyzing metadata only (no frames or transcript available)..."
	}
	return strings.Join(parts, ", ") + "! Running deep AI analysis..."
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func validateQuestion(question string) error {
	return validation.Validate(question,
		validation.Required.Error(msgEmptyQuestion),
		validation.By(func(value interface{}) error {
			if CountWords(value.(string)) > MaxQuestionWords {
				return errors.New(msgQuestionTooLong)
			}
			return nil
		}),
	)
}
