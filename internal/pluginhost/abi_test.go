package pluginhost

import (
	"testing"
	"time"

	"github.com/thought-cms/thought/internal/workspace"
)

func TestFromWorkspacePreview_OptionalFields(t *testing.T) {
	created := workspace.Timestamp{Time: time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)}
	p := workspace.ArticlePreview{
		Title:        "Hello",
		Slug:         "hello",
		CategorySegs: []string{"posts"},
		Metadata: workspace.ArticleMetadata{
			Created: created,
			Author:  "jo",
			Tags:    []string{"a", "b"},
		},
		Description:   "a greeting",
		Locale:        "en",
		DefaultLocale: "en",
	}

	out := FromWorkspacePreview(p)
	if out.Metadata.Description != nil {
		t.Fatalf("expected nil description, got %v", *out.Metadata.Description)
	}
	if out.Metadata.Lang != nil {
		t.Fatalf("expected nil lang, got %v", *out.Metadata.Lang)
	}
	if out.Metadata.Created.Seconds != created.Unix() {
		t.Fatalf("seconds mismatch: %d != %d", out.Metadata.Created.Seconds, created.Unix())
	}
	if out.Category.Path[0] != "posts" {
		t.Fatalf("unexpected category path: %v", out.Category.Path)
	}
}

func TestFromWorkspacePreview_PopulatedOptionalFields(t *testing.T) {
	p := workspace.ArticlePreview{
		Metadata: workspace.ArticleMetadata{
			Description: "override",
			Lang:        "zh",
		},
	}
	out := FromWorkspacePreview(p)
	if out.Metadata.Description == nil || *out.Metadata.Description != "override" {
		t.Fatalf("expected description pointer to carry override")
	}
	if out.Metadata.Lang == nil || *out.Metadata.Lang != "zh" {
		t.Fatalf("expected lang pointer to carry zh")
	}
}

func TestWithCategoryMetadata(t *testing.T) {
	meta := workspace.CategoryMetadata{
		Created:     workspace.Timestamp{Time: time.Unix(1000, 0)},
		Name:        "Posts",
		Description: "blog posts",
	}
	preview := WithCategoryMetadata(ArticlePreview{}, meta)
	if preview.Category.Metadata.Name != "Posts" {
		t.Fatalf("unexpected category metadata: %+v", preview.Category.Metadata)
	}
	if preview.Category.Metadata.Created.Seconds != 1000 {
		t.Fatalf("unexpected created seconds: %d", preview.Category.Metadata.Created.Seconds)
	}
}

func TestFromWorkspaceArticle_CarriesContent(t *testing.T) {
	a := &workspace.Article{
		Preview: workspace.ArticlePreview{Title: "Hello", Slug: "hello"},
		Content: "# Hello\n",
	}
	out := FromWorkspaceArticle(a)
	if out.Content != "# Hello\n" {
		t.Fatalf("unexpected content: %q", out.Content)
	}
	if out.Preview.Title != "Hello" {
		t.Fatalf("unexpected title: %q", out.Preview.Title)
	}
}
