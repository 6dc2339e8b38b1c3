package pluginhost

import (
	"context"
	"fmt"

	"github.com/thought-cms/thought/internal/pluginresolve"
)

// ThemePlugin is a resolved, compiled theme ready to render pages and
// indexes.
type ThemePlugin struct {
	host     *Host
	name     string
	resolved *pluginresolve.ResolvedPlugin
}

// NewThemePlugin compiles (or returns the cached compilation of) the
// resolved theme's component.
func NewThemePlugin(ctx context.Context, host *Host, name string, resolved *pluginresolve.ResolvedPlugin) (*ThemePlugin, error) {
	if _, err := host.compile(ctx, resolved.WasmPath()); err != nil {
		return nil, err
	}
	return &ThemePlugin{host: host, name: name, resolved: resolved}, nil
}

// GeneratePageRequest is the guest-side argument to generate-page.
type GeneratePageRequest struct {
	Article Article `json:"article"`
}

// GeneratePageResponse is the guest's rendered page.
type GeneratePageResponse struct {
	HTML string `json:"html"`
}

// GeneratePage invokes the theme's generate_page export with the fully
// loaded, hook-transformed article.
func (t *ThemePlugin) GeneratePage(ctx context.Context, article Article) (string, error) {
	cm, err := t.host.compile(ctx, t.resolved.WasmPath())
	if err != nil {
		return "", err
	}
	mod, err := t.host.instantiate(ctx, t.name, cm, ThemeGrants)
	if err != nil {
		return "", err
	}
	defer mod.Close(ctx)

	var resp GeneratePageResponse
	req := GeneratePageRequest{Article: article}
	if err := call(ctx, mod, t.name, "generate_page", req, &resp); err != nil {
		return "", fmt.Errorf("theme %s: %w", t.name, err)
	}
	return resp.HTML, nil
}

// GenerateIndexRequest is the guest-side argument to generate-index.
type GenerateIndexRequest struct {
	Previews []ArticlePreview `json:"previews"`
}

// GenerateIndexResponse is the guest's rendered index page.
type GenerateIndexResponse struct {
	HTML string `json:"html"`
}

// GenerateIndex invokes the theme's generate_index export with the
// full default-locale article preview set.
func (t *ThemePlugin) GenerateIndex(ctx context.Context, previews []ArticlePreview) (string, error) {
	cm, err := t.host.compile(ctx, t.resolved.WasmPath())
	if err != nil {
		return "", err
	}
	mod, err := t.host.instantiate(ctx, t.name, cm, ThemeGrants)
	if err != nil {
		return "", err
	}
	defer mod.Close(ctx)

	var resp GenerateIndexResponse
	req := GenerateIndexRequest{Previews: previews}
	if err := call(ctx, mod, t.name, "generate_index", req, &resp); err != nil {
		return "", fmt.Errorf("theme %s: %w", t.name, err)
	}
	return resp.HTML, nil
}
