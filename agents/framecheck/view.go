package framecheck

// FeatureControls are the popup controls that only work with a saved API key.
var FeatureControls = []string{
	"analysisMode",
	"languageSelect",
	"analyzeBtn",
	"customQuestion",
	"askBtn",
	"saveHistoryCheckbox",
	"clearHistoryBtn",
}

// View is everything the popup displays after a command.
type View struct {
	URL    string `json:"url"`
	HasKey bool   `json:"hasKey"`
	// MaskedKey is set whenever a key is saved.
	MaskedKey string `json:"maskedKey,omitempty"`
	// KeyInputVisible shows the key entry field, KeyMaskVisible the masked key with
	// edit and delete buttons. Both are hidden while settings are collapsed.
	KeyInputVisible bool `json:"keyInputVisible"`
	KeyMaskVisible  bool `json:"keyMaskVisible"`
	// EditValue repopulates the key input after edit-key.
	EditValue string `json:"editValue,omitempty"`

	Controls map[string]bool `json:"controls"`

	ResultHTML string `json:"resultHtml"`
	Cached     bool   `json:"cached"`
	// Alert is a blocking message, such as a rejected key.
	Alert string `json:"alert,omitempty"`
	// Error is set when the command failed; ResultHTML holds the rendered message.
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`

	WordCount     int  `json:"wordCount"`
	OverWordLimit bool `json:"overWordLimit"`

	SaveHistory bool          `json:"saveHistory"`
	History     []HistoryItem `json:"history"`
}

func controls(enabled bool) map[string]bool {
	m := make(map[string]bool, len(FeatureControls))
	for _, id := range FeatureControls {
		m[id] = enabled
	}
	return m
}
