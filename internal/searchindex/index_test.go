package searchindex

import (
	"context"
	"testing"
)

func sampleDocs() []SourceDoc {
	return []SourceDoc{
		{
			Title: "Hello World", Description: "a greeting", Content: "Hello there, world of Go.",
			Locale: "en", DefaultLocale: "en", Slug: "hello", CategorySegs: []string{"posts"},
			Permalink: "/posts/hello.html",
		},
		{
			Title: "你好世界", Description: "一个问候", Content: "你好，世界。",
			Locale: "zh", DefaultLocale: "en", Slug: "hello", CategorySegs: []string{"posts"},
			Permalink: "/posts/hello.zh.html",
		},
		{
			Title: "Goodbye", Description: "a farewell", Content: "Farewell, cruel world.",
			Locale: "en", DefaultLocale: "en", Slug: "goodbye", CategorySegs: []string{"posts"},
			Permalink: "/posts/goodbye.html",
		},
	}
}

func TestEnsureIndex_SkipsRebuildOnUnchangedFingerprint(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.EnsureIndex(ctx, sampleDocs(), "fp-1"); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if got := idx.lastFingerprint(); got != "fp-1" {
		t.Fatalf("expected stored fingerprint fp-1, got %q", got)
	}

	// A second call with the same fingerprint must be a no-op; feeding
	// it an empty doc set would otherwise wipe the index.
	if err := idx.EnsureIndex(ctx, nil, "fp-1"); err != nil {
		t.Fatalf("EnsureIndex (no-op): %v", err)
	}

	hits, err := idx.Query(ctx, "world", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected hits to survive the no-op EnsureIndex call")
	}
}

func TestQuery_PrefersDefaultLocaleOnDuplicateSlug(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.EnsureIndex(ctx, sampleDocs(), "fp-1"); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	hits, err := idx.Query(ctx, "hello", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	seenSlugs := map[string]int{}
	for _, h := range hits {
		seenSlugs[h.Title]++
	}
	var sawHello bool
	for _, h := range hits {
		if h.Permalink == "/posts/hello.html" {
			sawHello = true
		}
		if h.Permalink == "/posts/hello.zh.html" {
			t.Fatalf("expected the non-default-locale duplicate to be dropped, got %+v", h)
		}
	}
	if !sawHello {
		t.Fatal("expected the default-locale hello hit to survive")
	}
}

func TestQuery_FuzzyMatchesTransposedWord(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.EnsureIndex(ctx, sampleDocs(), "fp-1"); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	// "wrold" is "world" with the last two letters transposed.
	hits, err := idx.Query(ctx, "wrold", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected the transposition probe to surface a hit for 'wrold'")
	}
}
