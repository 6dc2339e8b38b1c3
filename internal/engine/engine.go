// Package engine drives a full site generate: it resolves plugins,
// fans per-article rendering out across the cache and runtime host,
// and emits the site index and search bundle.
package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/thought-cms/thought/internal/htmltotext"
	"github.com/thought-cms/thought/internal/pluginhost"
	"github.com/thought-cms/thought/internal/rendercache"
	"github.com/thought-cms/thought/internal/searchindex"
	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/thought-cms/thought/internal/workspace"
)

// Engine drives one or more generate runs against a workspace.
type Engine struct {
	Log zerolog.Logger
}

// articleResult is what one per-article task reports back to the
// fan-in step.
type articleResult struct {
	preview   *workspace.ArticlePreview
	sha256    string
	doc       searchindex.SourceDoc
	isDefault bool
}

// Generate runs a full site build: fresh output directory, render
// cache, plugin resolution, per-article rendering, and index/search
// emission.
func (e *Engine) Generate(ctx context.Context, ws *workspace.Workspace, outputDir string) error {
	// Step 1: fresh output directory.
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("remove output dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Step 2: render cache.
	cacheDir, err := ws.CacheDir()
	if err != nil {
		return err
	}
	cache, err := rendercache.Open(filepath.Join(cacheDir, "cache.redb"))
	if err != nil {
		return err
	}
	defer cache.Close()

	// Step 3: resolve & build plugins, theme fingerprint.
	host, err := pluginhost.NewHost(ctx)
	if err != nil {
		return fmt.Errorf("start plugin host: %w", err)
	}
	defer host.Close(ctx)

	plugins, err := resolvePlugins(ctx, host, ws)
	if err != nil {
		return err
	}

	// Step 4: copy theme assets verbatim.
	if err := copyThemeAssets(plugins.ThemeDir, outputDir); err != nil {
		return fmt.Errorf("copy theme assets: %w", err)
	}

	// Step 5: fan out one task per article.
	articles, _, err := ws.Traverse()
	if err != nil {
		return fmt.Errorf("traverse content tree: %w", err)
	}

	results, err := renderAllArticles(ctx, ws, plugins, cache, outputDir, articles, e.Log)
	if err != nil {
		return err
	}

	previews := make([]*workspace.ArticlePreview, 0, len(results))
	docs := make([]searchindex.SourceDoc, 0, len(results))
	digests := make([]string, 0, len(results))
	for _, r := range results {
		digests = append(digests, r.sha256)
		docs = append(docs, r.doc)
		if r.isDefault {
			previews = append(previews, r.preview)
		}
	}
	// Sort before folding so the combined fingerprint is independent of
	// task completion order.
	sort.Strings(digests)
	combined := sha256.New()
	for _, d := range digests {
		combined.Write([]byte(d))
	}
	combinedFP := fmt.Sprintf("%x", combined.Sum(nil))

	// The index page and the search index/bundle both read the fan-in
	// results but don't depend on each other, so they run concurrently
	// behind an errgroup that aborts both on first error.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeIndexPage(gctx, ws, plugins, previews, outputDir)
	})
	g.Go(func() error {
		return ensureSearchIndexAndBundle(gctx, cacheDir, docs, combinedFP, outputDir)
	})
	return g.Wait()
}

// renderAllArticles fans one task per article out over a semaphore
// bounded to GOMAXPROCS, letting every task run to completion even
// after the first failure; the first error encountered is returned.
func renderAllArticles(ctx context.Context, ws *workspace.Workspace, plugins *loadedPlugins, cache *rendercache.Cache, outputDir string, articleSegs [][]string, log zerolog.Logger) ([]articleResult, error) {
	sem := semaphore.NewWeighted(int64(maxInt(runtime.GOMAXPROCS(0), 1)))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	var once sync.Once
	results := make([]articleResult, 0, len(articleSegs))

	recordErr := func(err error) {
		once.Do(func() { firstErr = err })
	}

	for _, segs := range articleSegs {
		segs := segs
		if err := sem.Acquire(ctx, 1); err != nil {
			recordErr(err)
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			variantResults, err := renderArticleVariants(ctx, ws, plugins, cache, outputDir, segs)
			if err != nil {
				log.Error().Strs("article", segs).Err(err).Msg("article render failed")
				recordErr(thoughterr.WithContext(err, "article", fmt.Sprint(segs)))
				return
			}
			mu.Lock()
			results = append(results, variantResults...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// renderArticleVariants renders every locale variant of one article
// directory, producing one output file, cache entry, and search
// document per variant.
func renderArticleVariants(ctx context.Context, ws *workspace.Workspace, plugins *loadedPlugins, cache *rendercache.Cache, outputDir string, segs []string) ([]articleResult, error) {
	defaultArticle, err := ws.OpenArticle(segs, "")
	if err != nil {
		return nil, err
	}

	locales := make([]string, 0, len(defaultArticle.Preview.Translations))
	for _, t := range defaultArticle.Preview.Translations {
		locales = append(locales, t.Locale)
	}
	if len(locales) == 0 {
		locales = []string{defaultArticle.DefaultLocale()}
	}

	results := make([]articleResult, 0, len(locales))
	for _, locale := range locales {
		article := defaultArticle
		if locale != defaultArticle.Locale() {
			article, err = ws.OpenArticle(segs, locale)
			if err != nil {
				return nil, err
			}
		}

		result, err := renderOneVariant(ctx, plugins, cache, outputDir, article)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// renderOneVariant renders, caches, writes, and indexes a single
// locale variant of an article.
func renderOneVariant(ctx context.Context, plugins *loadedPlugins, cache *rendercache.Cache, outputDir string, article *workspace.Article) (articleResult, error) {
	outPath := outputPath(article.Preview.CategorySegs, article.Preview.Slug, article.Locale(), article.DefaultLocale())

	var html string
	var err error
	if cached, ok := cache.Lookup(outPath, article, plugins.ThemeFP); ok {
		html = cached
	} else {
		html, err = renderArticle(ctx, plugins, article)
		if err != nil {
			return articleResult{}, err
		}
		if err := cache.Store(outPath, article, html, plugins.ThemeFP); err != nil {
			return articleResult{}, err
		}
	}

	dest := filepath.Join(outputDir, outPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return articleResult{}, err
	}
	if err := os.WriteFile(dest, []byte(html), 0o644); err != nil {
		return articleResult{}, err
	}

	preview := article.Preview
	doc := searchindex.SourceDoc{
		Title:         preview.Title,
		Description:   preview.Description,
		Content:       htmltotext.Convert(html),
		Locale:        preview.Locale,
		DefaultLocale: preview.DefaultLocale,
		Slug:          preview.Slug,
		CategorySegs:  preview.CategorySegs,
		Permalink:     "/" + filepath.ToSlash(outPath),
	}

	return articleResult{
		preview:   &preview,
		sha256:    article.SHA256(),
		doc:       doc,
		isDefault: article.IsDefaultLocale(),
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
