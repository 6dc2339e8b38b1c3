// Package htmltotext turns rendered article HTML into the plain text
// the search index tokenizes. Guest themes own markdown-to-HTML
// conversion, so by the time an article reaches indexing all that is
// on hand is HTML; this package strips it back down to words.
package htmltotext

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regex patterns for HTML parsing.
var (
	// Matches any HTML tag (opening, closing, or self-closing).
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)

	// Matches opening anchor tags and captures the href attribute.
	anchorOpenRe = regexp.MustCompile(`(?i)<a\s[^>]*href\s*=\s*["']([^"']*)["'][^>]*>`)

	// Matches closing anchor tags.
	anchorCloseRe = regexp.MustCompile(`(?i)</a\s*>`)

	// Matches <br> and <br/> tags (with optional whitespace).
	brTagRe = regexp.MustCompile(`(?i)<br\s*/?\s*>`)

	// Matches block-level closing tags that should produce line breaks.
	blockCloseRe = regexp.MustCompile(`(?i)</(?:p|div|section|article|header|footer|nav|aside|blockquote|li|dd|dt|figcaption|figure|main)\s*>`)

	// Matches heading closing tags (produce double line breaks).
	headingCloseRe = regexp.MustCompile(`(?i)</h[1-6]\s*>`)

	// Matches <hr> / <hr/> tags.
	hrTagRe = regexp.MustCompile(`(?i)<hr\s*/?\s*>`)

	// Matches <li> opening tags to insert list bullet.
	liOpenRe = regexp.MustCompile(`(?i)<li[^>]*>`)

	// Collapses 3+ consecutive newlines to 2.
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)

	// Collapses multiple spaces (not newlines) to a single space.
	multiSpaceRe = regexp.MustCompile(`[^\S\n]+`)
)

// Convert transforms rendered HTML into plain, tokenizable text: it
// decodes entities, replaces anchors with their visible text (dropping
// the href itself, since a raw URL is noise for a word index rather
// than a useful term), and turns block-level structure into newlines.
func Convert(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	result := inlineAnchorText(htmlContent)

	result = hrTagRe.ReplaceAllString(result, "\n\n")
	result = brTagRe.ReplaceAllString(result, "\n")
	result = liOpenRe.ReplaceAllString(result, "\n")
	result = headingCloseRe.ReplaceAllString(result, "\n\n")
	result = blockCloseRe.ReplaceAllString(result, "\n\n")

	result = htmlTagRe.ReplaceAllString(result, "")
	result = html.UnescapeString(result)

	result = multiSpaceRe.ReplaceAllString(result, " ")
	lines := strings.Split(result, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	result = strings.Join(lines, "\n")
	result = multiNewlineRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// inlineAnchorText replaces every <a href="...">text</a> with just its
// visible text, stripped of any nested markup. Unlike a rendered export
// of the article, the search index has no use for the link target
// itself, so the href is discarded rather than footnoted.
func inlineAnchorText(htmlContent string) string {
	openMatches := anchorOpenRe.FindAllStringIndex(htmlContent, -1)
	if len(openMatches) == 0 {
		return htmlContent
	}

	type span struct {
		start, end int
		text       string
	}
	spans := make([]span, 0, len(openMatches))

	lastEnd := 0
	for _, openIdx := range openMatches {
		// Skip anchors that start before the previous span ended
		// (handles nested anchors, which would otherwise produce
		// overlapping spans).
		if openIdx[0] < lastEnd {
			continue
		}

		closeIdx := anchorCloseRe.FindStringIndex(htmlContent[openIdx[1]:])
		if closeIdx == nil {
			continue
		}

		textStart := openIdx[1]
		textEnd := openIdx[1] + closeIdx[0]
		fullEnd := openIdx[1] + closeIdx[1]

		linkText := htmlTagRe.ReplaceAllString(htmlContent[textStart:textEnd], "")
		linkText = html.UnescapeString(linkText)
		linkText = strings.TrimSpace(linkText)

		spans = append(spans, span{start: openIdx[0], end: fullEnd, text: linkText})
		lastEnd = fullEnd
	}

	if len(spans) == 0 {
		return htmlContent
	}

	result := htmlContent
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		result = result[:s.start] + s.text + result[s.end:]
	}
	return result
}
