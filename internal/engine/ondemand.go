package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/thought-cms/thought/internal/pluginhost"
	"github.com/thought-cms/thought/internal/rendercache"
	"github.com/thought-cms/thought/internal/workspace"
)

// RenderOne renders exactly one article locale variant on demand and
// writes it into outputDir, without recomputing the site index or
// search bundle. Callers that need those regenerated drive that
// separately once a render invalidates them.
func (e *Engine) RenderOne(ctx context.Context, ws *workspace.Workspace, outputDir string, segments []string, locale string) error {
	cacheDir, err := ws.CacheDir()
	if err != nil {
		return err
	}
	cache, err := rendercache.Open(filepath.Join(cacheDir, "cache.redb"))
	if err != nil {
		return err
	}
	defer cache.Close()

	host, err := pluginhost.NewHost(ctx)
	if err != nil {
		return fmt.Errorf("start plugin host: %w", err)
	}
	defer host.Close(ctx)

	plugins, err := resolvePlugins(ctx, host, ws)
	if err != nil {
		return err
	}

	article, err := ws.OpenArticle(segments, locale)
	if err != nil {
		return fmt.Errorf("open article %v (locale=%q): %w", segments, locale, err)
	}

	_, err = renderOneVariant(ctx, plugins, cache, outputDir, article)
	return err
}
