// Package format turns model output into the HTML fragment shown in the result area.
package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Format escapes raw model text and then applies the only two markup rules the
// popup understands: **X** becomes <strong>X</strong> and newlines become <br>.
// Any HTML the model returns is rendered as text.
func Format(raw string) string {
	out := html.EscapeString(raw)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	return strings.ReplaceAll(out, "\n", "<br>")
}

var resultPolicy = newResultPolicy()

func newResultPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "br", "span", "div")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-z-]+$`)).Globally()
	p.AllowURLSchemes("https", "http")
	p.RequireNoReferrerOnLinks(true)
	return p
}

// Sanitize strips everything but the markup produced by this package and the popup
// itself. It is applied when stored HTML (cache, history replay) is rendered.
func Sanitize(fragment string) string {
	return resultPolicy.Sanitize(fragment)
}
