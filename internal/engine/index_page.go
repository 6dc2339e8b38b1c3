package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thought-cms/thought/internal/pluginhost"
	"github.com/thought-cms/thought/internal/workspace"
)

// writeIndexPage builds the theme's index page from every default-
// locale article preview and writes it to outputDir/index.html.
func writeIndexPage(ctx context.Context, ws *workspace.Workspace, plugins *loadedPlugins, previews []*workspace.ArticlePreview, outputDir string) error {
	categoryMeta := map[string]workspace.CategoryMetadata{}

	abiPreviews := make([]pluginhost.ArticlePreview, 0, len(previews))
	for _, p := range previews {
		abi := pluginhost.FromWorkspacePreview(*p)

		key := strings.Join(p.CategorySegs, "/")
		meta, ok := categoryMeta[key]
		if !ok && len(p.CategorySegs) > 0 {
			cat, err := ws.OpenCategory(p.CategorySegs)
			if err != nil {
				return fmt.Errorf("open category %v: %w", p.CategorySegs, err)
			}
			meta = cat.Metadata
			categoryMeta[key] = meta
		}
		abi = pluginhost.WithCategoryMetadata(abi, meta)
		abiPreviews = append(abiPreviews, abi)
	}

	html, err := plugins.Theme.GenerateIndex(ctx, abiPreviews)
	if err != nil {
		return fmt.Errorf("generate_index: %w", err)
	}

	return os.WriteFile(filepath.Join(outputDir, "index.html"), []byte(html), 0o644)
}
