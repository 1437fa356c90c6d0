package framecheck

import (
	"strings"

	"framecheck/shared/ai"

	"github.com/pemistahl/lingua-go"
)

// AutoLanguage asks the resolver to answer in the language the video is in.
const AutoLanguage = "auto"

var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Russian,
	lingua.Japanese,
	lingua.Korean,
	lingua.Chinese,
	lingua.Hindi,
	lingua.Arabic,
	lingua.Turkish,
	lingua.Indonesian,
	lingua.Vietnamese,
}

// LanguageResolver turns the language selector value into a response language.
type LanguageResolver struct {
	detector lingua.LanguageDetector
	fallback string
}

func NewLanguageResolver(fallback string) *LanguageResolver {
	if fallback == "" || strings.EqualFold(fallback, AutoLanguage) {
		fallback = ai.DefaultLanguage
	}
	return &LanguageResolver{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithLowAccuracyMode().
			Build(),
		fallback: fallback,
	}
}

// Resolve returns selected unless it is empty or "auto". For "auto" the language is
// detected from the transcript, then the description and title.
func (r *LanguageResolver) Resolve(selected string, sample ...string) string {
	if selected == "" {
		return r.fallback
	}
	if !strings.EqualFold(selected, AutoLanguage) {
		return selected
	}

	for _, text := range sample {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if lang, ok := r.detector.DetectLanguageOf(text); ok {
			return lang.String()
		}
	}
	return r.fallback
}
