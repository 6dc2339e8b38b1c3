package pluginhost

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero/api"

	"github.com/thought-cms/thought/internal/pluginresolve"
	"github.com/thought-cms/thought/internal/workspace"
)

// HookPlugin is a resolved, compiled hook ready to observe or rewrite
// an article before and after theme rendering.
type HookPlugin struct {
	host     *Host
	name     string
	resolved *pluginresolve.ResolvedPlugin
	ws       *workspace.Workspace

	// BuildDir, when non-empty, is mounted at /build. NewHookPlugin
	// leaves it empty.
	BuildDir string
}

// NewHookPlugin compiles (or returns the cached compilation of) the
// resolved hook's component.
func NewHookPlugin(ctx context.Context, host *Host, name string, resolved *pluginresolve.ResolvedPlugin, ws *workspace.Workspace) (*HookPlugin, error) {
	if _, err := host.compile(ctx, resolved.WasmPath()); err != nil {
		return nil, err
	}
	return &HookPlugin{host: host, name: name, resolved: resolved, ws: ws}, nil
}

// instantiate spins up a fresh guest instance with a scratch /tmp
// directory unique to this call, returning the module and a cleanup
// that closes it and removes the scratch directory.
func (h *HookPlugin) instantiate(ctx context.Context) (api.Module, func(), error) {
	cm, err := h.host.compile(ctx, h.resolved.WasmPath())
	if err != nil {
		return nil, nil, err
	}
	grants, err := HookGrants(h.ws, h.BuildDir)
	if err != nil {
		return nil, nil, err
	}
	tmpDir, err := os.MkdirTemp("", "thought-hook-*")
	if err != nil {
		return nil, nil, err
	}
	grants.PreopenDirs["/tmp"] = tmpDir

	mod, err := h.host.instantiate(ctx, h.name, cm, grants)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, nil, err
	}
	cleanup := func() {
		mod.Close(ctx)
		os.RemoveAll(tmpDir)
	}
	return mod, cleanup, nil
}

// OnPreRenderRequest is the guest-side argument to on_pre_render.
type OnPreRenderRequest struct {
	Article Article `json:"article"`
}

// OnPreRenderResponse carries the (possibly rewritten) article.
type OnPreRenderResponse struct {
	Article Article `json:"article"`
}

// OnPreRender invokes the hook's on_pre_render export, allowing a hook
// to rewrite article content/metadata before theme rendering.
func (h *HookPlugin) OnPreRender(ctx context.Context, article Article) (Article, error) {
	mod, cleanup, err := h.instantiate(ctx)
	if err != nil {
		return Article{}, err
	}
	defer cleanup()

	var resp OnPreRenderResponse
	req := OnPreRenderRequest{Article: article}
	if err := call(ctx, mod, h.name, "on_pre_render", req, &resp); err != nil {
		return Article{}, fmt.Errorf("hook %s: %w", h.name, err)
	}
	return resp.Article, nil
}

// OnPostRenderRequest is the guest-side argument to on_post_render.
type OnPostRenderRequest struct {
	Article Article `json:"article"`
	HTML    string  `json:"html"`
}

// OnPostRenderResponse carries the (possibly rewritten) rendered HTML.
type OnPostRenderResponse struct {
	HTML string `json:"html"`
}

// OnPostRender invokes the hook's on_post_render export, allowing a
// hook to post-process the theme's rendered HTML.
func (h *HookPlugin) OnPostRender(ctx context.Context, article Article, html string) (string, error) {
	mod, cleanup, err := h.instantiate(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	var resp OnPostRenderResponse
	req := OnPostRenderRequest{Article: article, HTML: html}
	if err := call(ctx, mod, h.name, "on_post_render", req, &resp); err != nil {
		return "", fmt.Errorf("hook %s: %w", h.name, err)
	}
	return resp.HTML, nil
}
