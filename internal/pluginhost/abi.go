// Package pluginhost instantiates guest plugin components and
// marshals article/category/metadata values across the host/guest
// boundary to invoke on_pre_render, generate_page, on_post_render, and
// generate_index.
//
// Records cross the boundary as plain JSON exchanged over wazero's
// linear memory via an alloc/call/read/dealloc handshake (see
// call.go), rather than a canonical-ABI binding generated by a
// component-model binding generator.
package pluginhost

import (
	"github.com/thought-cms/thought/internal/workspace"
)

// Timestamp mirrors the `timestamp` record.
type Timestamp struct {
	Seconds int64  `json:"seconds"`
	Nanos   uint32 `json:"nanos"`
}

// CategoryMetadata mirrors `category-metadata`.
type CategoryMetadata struct {
	Created     Timestamp `json:"created"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// Category mirrors `category`.
type Category struct {
	Path     []string         `json:"path"`
	Metadata CategoryMetadata `json:"metadata"`
}

// ArticleMetadata mirrors `article-metadata`.
type ArticleMetadata struct {
	Created     Timestamp `json:"created"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author"`
	Description *string   `json:"description"`
	Lang        *string   `json:"lang"`
}

// Translation mirrors `translation`.
type Translation struct {
	Locale string `json:"locale"`
	Title  string `json:"title"`
}

// ArticlePreview mirrors `article-preview`.
type ArticlePreview struct {
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Category      Category        `json:"category"`
	Metadata      ArticleMetadata `json:"metadata"`
	Description   string          `json:"description"`
	Locale        string          `json:"locale"`
	DefaultLocale string          `json:"default_locale"`
	Translations  []Translation   `json:"translations"`
}

// Article mirrors `article`.
type Article struct {
	Preview ArticlePreview `json:"preview"`
	Content string         `json:"content"`
}

func toOptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toTimestamp(t workspace.Timestamp) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: uint32(t.Nanosecond())}
}

// FromWorkspaceArticle converts a workspace.Article into its ABI record.
func FromWorkspaceArticle(a *workspace.Article) Article {
	return Article{
		Preview: FromWorkspacePreview(a.Preview),
		Content: a.Content,
	}
}

// FromWorkspacePreview converts a workspace.ArticlePreview into its ABI
// record. The category record is reconstructed from the preview's
// stored category segments only (no per-preview category metadata is
// retained on ArticlePreview); callers that need full category metadata
// pass it in separately via WithCategoryMetadata.
func FromWorkspacePreview(p workspace.ArticlePreview) ArticlePreview {
	translations := make([]Translation, 0, len(p.Translations))
	for _, t := range p.Translations {
		translations = append(translations, Translation{Locale: t.Locale, Title: t.Title})
	}
	return ArticlePreview{
		Title: p.Title,
		Slug:  p.Slug,
		Category: Category{
			Path: p.CategorySegs,
		},
		Metadata: ArticleMetadata{
			Created:     toTimestamp(p.Metadata.Created.Time),
			Tags:        p.Metadata.Tags,
			Author:      p.Metadata.Author,
			Description: toOptionalString(p.Metadata.Description),
			Lang:        toOptionalString(p.Metadata.Lang),
		},
		Description:   p.Description,
		Locale:        p.Locale,
		DefaultLocale: p.DefaultLocale,
		Translations:  translations,
	}
}

// WithCategoryMetadata attaches category metadata (created/name/
// description) to an already-converted ArticlePreview's embedded
// Category record, since workspace.ArticlePreview itself only carries
// category segments.
func WithCategoryMetadata(preview ArticlePreview, meta workspace.CategoryMetadata) ArticlePreview {
	preview.Category.Metadata = CategoryMetadata{
		Created:     toTimestamp(meta.Created.Time),
		Name:        meta.Name,
		Description: meta.Description,
	}
	return preview
}
