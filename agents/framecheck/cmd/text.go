package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
)

// Output formats accepted by --output.
const (
	outputText     = "text"
	outputHTML     = "html"
	outputMarkdown = "markdown"
)

var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// render converts a result fragment into the requested output format.
func render(fragment, output string) (string, error) {
	switch output {
	case outputText, "":
		return plainText(fragment), nil
	case outputHTML:
		return fragment, nil
	case outputMarkdown:
		md, err := mdConverter.ConvertString(fragment)
		if err != nil {
			return "", fmt.Errorf("failed to convert result to markdown: %w", err)
		}
		return strings.TrimSpace(md), nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, html or markdown)", output)
}

// plainText renders a result fragment for the terminal: line breaks become newlines
// and every other tag is dropped.
func plainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(lineBreak.ReplaceAllString(fragment, "\n")))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}
