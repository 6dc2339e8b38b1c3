package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

// writeWorkspace lays out a minimal workspace under dir.
func writeWorkspace(t *testing.T, dir string) {
	t.Helper()
	mustWrite(t, filepath.Join(dir, ManifestFileName), `
name = "test blog"
description = "a test blog"
owner = "Jane Doe"

[plugins.zenflow]
git = "https://github.com/acme/zenflow"
rev = "v0.4.2"
`)
	mustWrite(t, filepath.Join(dir, "articles", CategorySidecarName), `
created = "2024-01-01T00:00:00Z"
name = "root"
description = ""
`)
	mustWrite(t, filepath.Join(dir, "articles", "posts", CategorySidecarName), `
created = "2024-01-01T00:00:00Z"
name = "Posts"
description = "blog posts"
`)
	mustWrite(t, filepath.Join(dir, "articles", "posts", "hello", ArticleSidecarName), `
created = "2024-05-12T09:00:00Z"
tags = ["go", "systems"]
author = "Jane Doe"
`)
	mustWrite(t, filepath.Join(dir, "articles", "posts", "hello", "article.md"), "# Hello\n\nA greeting.\n")
	mustWrite(t, filepath.Join(dir, "articles", "posts", "hello", "zh.md"), "# 你好\n\n一个问候。\n")
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_ParsesManifestAndLocators(t *testing.T) {
	dir := t.TempDir()
	writeWorkspace(t, dir)

	ws, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	locator, ok := ws.Manifest().Plugins["zenflow"]
	if !ok {
		t.Fatal("expected zenflow plugin declared")
	}
	if locator.Kind != LocatorGit || locator.GitURL != "https://github.com/acme/zenflow" || locator.Rev != "v0.4.2" {
		t.Fatalf("unexpected locator: %+v", locator)
	}
}

func TestOpen_MissingManifest(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestOpenArticle_ExtractsTitleAndDescription(t *testing.T) {
	dir := t.TempDir()
	writeWorkspace(t, dir)
	ws, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	article, err := ws.OpenArticle([]string{"posts", "hello"}, "")
	if err != nil {
		t.Fatalf("OpenArticle: %v", err)
	}
	if article.Preview.Title != "Hello" {
		t.Errorf("title = %q, want %q", article.Preview.Title, "Hello")
	}
	if article.Preview.Description != "A greeting." {
		t.Errorf("description = %q, want %q", article.Preview.Description, "A greeting.")
	}
	if article.Preview.DefaultLocale != "en" {
		t.Errorf("default locale = %q, want en", article.Preview.DefaultLocale)
	}
	if !article.IsDefaultLocale() {
		t.Error("expected default-locale article")
	}
}

func TestOpenArticle_LocaleVariant(t *testing.T) {
	dir := t.TempDir()
	writeWorkspace(t, dir)
	ws, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	article, err := ws.OpenArticle([]string{"posts", "hello"}, "zh")
	if err != nil {
		t.Fatalf("OpenArticle: %v", err)
	}
	if article.Preview.Title != "你好" {
		t.Errorf("title = %q, want 你好", article.Preview.Title)
	}
	if article.IsDefaultLocale() {
		t.Error("zh variant should not be the default locale")
	}

	foundZh := false
	for _, tr := range article.Preview.Translations {
		if tr.Locale == "zh" && tr.Title == "你好" {
			foundZh = true
		}
	}
	if !foundZh {
		t.Errorf("expected zh translation entry, got %+v", article.Preview.Translations)
	}
}

func TestOpenArticle_NoH1FallsBackToDate(t *testing.T) {
	dir := t.TempDir()
	writeWorkspace(t, dir)
	mustWrite(t, filepath.Join(dir, "articles", "posts", "undated", ArticleSidecarName), `
created = "2024-05-12T09:00:00Z"
author = "Jane Doe"
`)
	mustWrite(t, filepath.Join(dir, "articles", "posts", "undated", "article.md"), "Just a sentence, no heading.\n")

	ws, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	article, err := ws.OpenArticle([]string{"posts", "undated"}, "")
	if err != nil {
		t.Fatalf("OpenArticle: %v", err)
	}
	want := "Sun 12 May"
	if article.Preview.Title != want {
		t.Errorf("title = %q, want %q", article.Preview.Title, want)
	}
	if article.Preview.Description != "" {
		t.Errorf("description = %q, want empty", article.Preview.Description)
	}
}

func TestTraverse_FindsArticlesAndCategories(t *testing.T) {
	dir := t.TempDir()
	writeWorkspace(t, dir)
	ws, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	articles, categories, err := ws.Traverse()
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if len(articles) != 1 || articles[0][0] != "posts" || articles[0][1] != "hello" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
	if len(categories) != 1 || categories[0][0] != "posts" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestSHA256_StableAcrossIdenticalInputs(t *testing.T) {
	dir := t.TempDir()
	writeWorkspace(t, dir)
	ws, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a1, err := ws.OpenArticle([]string{"posts", "hello"}, "")
	if err != nil {
		t.Fatalf("OpenArticle: %v", err)
	}
	a2, err := ws.OpenArticle([]string{"posts", "hello"}, "")
	if err != nil {
		t.Fatalf("OpenArticle: %v", err)
	}
	if a1.SHA256() != a2.SHA256() {
		t.Error("fingerprint should be stable across identical loads")
	}
}
