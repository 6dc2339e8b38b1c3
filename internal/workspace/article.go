package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// localeVariants lists every markdown locale file in an article
// directory: "" (default, article.md) plus every "<code>.md" sibling,
// matched against the "*.md" pattern rather than a manual suffix check
// so the match rule stays consistent with the asset-copying glob in
// internal/engine.
func localeVariants(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	variants := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		matched, err := doublestar.Match("*.md", name)
		if err != nil || !matched {
			continue
		}
		if name == DefaultArticleFile {
			variants[""] = filepath.Join(dir, name)
			continue
		}
		locale := strings.TrimSuffix(name, ".md")
		variants[locale] = filepath.Join(dir, name)
	}
	return variants, nil
}

// OpenArticle opens the article under segments in the requested locale,
// or the article's default locale when locale is empty.
func (w *Workspace) OpenArticle(segments []string, locale string) (*Article, error) {
	if len(segments) == 0 {
		return nil, thoughterr.ErrInvalidPathEncoding
	}

	dir := w.categoryDir(segments)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, thoughterr.ErrArticleNotFound
	}
	if !isArticleDir(dir) {
		return nil, thoughterr.ErrArticleNotFound
	}

	sidecar, err := os.ReadFile(filepath.Join(dir, ArticleSidecarName))
	if err != nil {
		return nil, thoughterr.ErrArticleNotFound
	}
	var meta ArticleMetadata
	if err := decodeTOMLInto(sidecar, &meta); err != nil {
		return nil, err
	}

	variants, err := localeVariants(dir)
	if err != nil {
		return nil, err
	}

	defaultLocale, err := w.resolveDefaultLocale(meta, variants)
	if err != nil {
		return nil, err
	}

	requested := locale
	if requested == "" {
		requested = defaultLocale
	}

	fileKey := requested
	if requested == defaultLocale {
		fileKey = ""
	}
	contentPath, ok := variants[fileKey]
	if !ok {
		return nil, thoughterr.ErrArticleNotFound
	}
	content, err := os.ReadFile(contentPath)
	if err != nil {
		return nil, thoughterr.ErrArticleNotFound
	}

	slug := segments[len(segments)-1]
	category, err := w.OpenCategory(segments[:len(segments)-1])
	if err != nil {
		return nil, thoughterr.ErrWorkspaceNotFound
	}

	title, description := extractTitleDescription(content)
	if title == "" {
		title = formatFallbackTitle(meta.Created.Time)
	}
	if meta.Description != "" {
		description = meta.Description
	}

	translations, err := w.buildTranslations(variants, defaultLocale, meta)
	if err != nil {
		return nil, err
	}

	preview := ArticlePreview{
		Title:         title,
		Slug:          slug,
		CategorySegs:  category.Segments,
		Metadata:      meta,
		Description:   description,
		Locale:        requested,
		DefaultLocale: defaultLocale,
		Translations:  translations,
	}

	return &Article{
		Preview:  preview,
		Content:  string(content),
		Segments: append([]string{}, segments...),
	}, nil
}

// buildTranslations extracts a title for every locale variant, always
// including the default locale.
func (w *Workspace) buildTranslations(variants map[string]string, defaultLocale string, meta ArticleMetadata) ([]Translation, error) {
	locales := make([]string, 0, len(variants))
	for key := range variants {
		locale := key
		if key == "" {
			locale = defaultLocale
		}
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	out := make([]Translation, 0, len(locales))
	seen := make(map[string]bool, len(locales))
	for _, locale := range locales {
		if seen[locale] {
			continue
		}
		seen[locale] = true
		fileKey := locale
		if locale == defaultLocale {
			fileKey = ""
		}
		path, ok := variants[fileKey]
		if !ok {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		title, _ := extractTitleDescription(content)
		if title == "" {
			title = formatFallbackTitle(meta.Created.Time)
		}
		out = append(out, Translation{Locale: locale, Title: title})
	}
	return out, nil
}

// extractTitleDescription walks the markdown AST: title is the text of
// the first H1; description is the concatenated text of the paragraph
// immediately following it (first paragraph only).
func extractTitleDescription(content []byte) (title, description string) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(content))

	var headingNode ast.Node
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			headingNode = n
			title = nodeText(n, content)
			break
		}
	}
	if headingNode == nil {
		return "", ""
	}
	if next := headingNode.NextSibling(); next != nil {
		if p, ok := next.(*ast.Paragraph); ok {
			description = nodeText(p, content)
		}
	}
	return title, description
}

// nodeText concatenates the text segments under n.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
		default:
			if v.Type() == ast.TypeInline {
				sb.WriteString(nodeText(v, source))
			}
		}
	}
	return sb.String()
}

// formatFallbackTitle formats a creation timestamp as "EEE D MMM",
// e.g. "Mon 1 Jan".
func formatFallbackTitle(created time.Time) string {
	return created.Format("Mon 2 Jan")
}
