// Package preprocess normalizes raw source content before it reaches a
// provider: markup is reduced to Markdown, whitespace is collapsed, and
// the result is bounded to the provider's token budget.
package preprocess

import (
	nurl "net/url"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/gleanhq/glean/internal/logger"
)

// Kind tells the cleaner how to interpret source content.
type Kind string

const (
	// KindMarkup is HTML or similar tag soup.
	KindMarkup Kind = "markup"
	// KindPlain is already-readable text; only whitespace is normalized.
	KindPlain Kind = "plain"
)

// minArticleLength is the minimum readability TextContent length for the
// extraction to be considered successful. Shorter results mean the
// algorithm failed to find the main content and we keep the full input.
const minArticleLength = 50

// Cleaner reduces markup to LLM-friendly Markdown. The underlying
// converter is goroutine-safe and reused across calls.
type Cleaner struct {
	conv *converter.Converter
}

// NewCleaner builds a cleaner with the base, commonmark, and table
// plugins. Minimal table cell padding keeps token cost down.
func NewCleaner() *Cleaner {
	return &Cleaner{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Clean normalizes content for extraction. Markup goes through
// readability then Markdown conversion; each stage falls back rather
// than fails, so Clean always returns usable text. Plain content only
// has its whitespace normalized.
func (c *Cleaner) Clean(content string, kind Kind, sourceURL string) string {
	if kind != KindMarkup {
		return normalizeWhitespace(content)
	}

	html := mainContent(content, sourceURL)

	markdown, err := c.conv.ConvertString(html, converter.WithDomain(sourceURL))
	if err != nil {
		logger.Warn("preprocess: markdown conversion failed, stripping tags",
			"source", sourceURL, "error", err)
		markdown = stripTags(html)
	}
	return normalizeWhitespace(markdown)
}

// mainContent runs the Mozilla Readability algorithm, returning the
// original HTML when extraction fails or yields too little text.
func mainContent(rawHTML, sourceURL string) string {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		logger.Warn("preprocess: invalid source URL, keeping full document",
			"source", sourceURL, "error", err)
		return rawHTML
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		logger.Warn("preprocess: readability failed, keeping full document",
			"source", sourceURL, "error", err)
		return rawHTML
	}
	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		logger.Debug("preprocess: readability output too short, keeping full document",
			"source", sourceURL, "length", len(article.TextContent))
		return rawHTML
	}
	return article.Content
}

// stripTags extracts visible text from an HTML fragment.
func stripTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	lineSpaces = regexp.MustCompile(`[ \t]+`)
)

// normalizeWhitespace collapses runs of spaces and caps consecutive
// blank lines at one, preserving paragraph structure.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = lineSpaces.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
