package searchindex

import "strings"

// Document is the bleve-indexed shape of one article, keyed by its
// permalink.
type Document struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Description   string `json:"description"`
	Permalink     string `json:"permalink"`
	Locale        string `json:"locale"`
	DefaultLocale string `json:"default_locale"`
	Slug          string `json:"slug"`
	Category      string `json:"category"`
}

// SourceDoc is the caller-assembled input to EnsureIndex: an article's
// preview fields plus its raw content and the output permalink the
// engine computed for it.
type SourceDoc struct {
	Title         string
	Description   string
	Content       string
	Locale        string
	DefaultLocale string
	Slug          string
	CategorySegs  []string
	Permalink     string
}

func toDocument(s SourceDoc) Document {
	return Document{
		Title:         s.Title,
		Content:       s.Content,
		Description:   s.Description,
		Permalink:     s.Permalink,
		Locale:        s.Locale,
		DefaultLocale: s.DefaultLocale,
		Slug:          s.Slug,
		Category:      strings.Join(s.CategorySegs, "/"),
	}
}
