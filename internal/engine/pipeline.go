package engine

import (
	"context"
	"fmt"

	"github.com/thought-cms/thought/internal/pluginhost"
	"github.com/thought-cms/thought/internal/workspace"
)

// renderArticle runs the full article pipeline: the hook chain's
// on_pre_render in declaration order, the theme's generate_page, then
// the hook chain's on_post_render in the same declaration order.
func renderArticle(ctx context.Context, plugins *loadedPlugins, article *workspace.Article) (string, error) {
	abiArticle := pluginhost.FromWorkspaceArticle(article)

	for _, hook := range plugins.Hooks {
		next, err := hook.OnPreRender(ctx, abiArticle)
		if err != nil {
			return "", fmt.Errorf("on_pre_render: %w", err)
		}
		abiArticle = next
	}

	html, err := plugins.Theme.GeneratePage(ctx, abiArticle)
	if err != nil {
		return "", fmt.Errorf("generate_page: %w", err)
	}

	for _, hook := range plugins.Hooks {
		next, err := hook.OnPostRender(ctx, abiArticle, html)
		if err != nil {
			return "", fmt.Errorf("on_post_render: %w", err)
		}
		html = next
	}

	return html, nil
}
