package engine

import (
	"context"
	"fmt"

	"github.com/thought-cms/thought/internal/pluginhost"
	"github.com/thought-cms/thought/internal/pluginresolve"
	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/thought-cms/thought/internal/workspace"
)

// loadedPlugins holds the resolved, built, and compiled plugin set for
// one generate run.
type loadedPlugins struct {
	Theme    *pluginhost.ThemePlugin
	ThemeDir string
	Hooks    []*pluginhost.HookPlugin
	ThemeFP  string
}

// resolvePlugins resolves and builds every plugin declared in the
// workspace manifest, classifies each by its resolved Plugin.toml kind,
// and orders hooks by manifest declaration order.
func resolvePlugins(ctx context.Context, host *pluginhost.Host, ws *workspace.Workspace) (*loadedPlugins, error) {
	var resolver pluginresolve.Resolver
	manifest := ws.Manifest()

	resolved := make(map[string]*pluginresolve.ResolvedPlugin, len(manifest.Plugins))
	for name, locator := range manifest.Plugins {
		rp, err := resolver.Resolve(ctx, ws, name, locator)
		if err != nil {
			return nil, fmt.Errorf("resolve plugin %q: %w", name, err)
		}
		if err := rp.Build(locator.Kind == workspace.LocatorLocal); err != nil {
			return nil, fmt.Errorf("build plugin %q: %w", name, err)
		}
		resolved[name] = rp
	}

	var themeName string
	var themeResolved *pluginresolve.ResolvedPlugin
	hookNames := make([]string, 0, len(manifest.PluginOrder))

	order := manifest.PluginOrder
	if len(order) == 0 {
		// Fallback for manifests whose order could not be recovered
		// (e.g. constructed in-memory rather than parsed from TOML).
		for name := range resolved {
			order = append(order, name)
		}
	}

	for _, name := range order {
		rp, ok := resolved[name]
		if !ok {
			continue
		}
		switch rp.Manifest.Kind {
		case workspace.PluginKindTheme:
			if themeResolved != nil {
				return nil, fmt.Errorf("%w: multiple theme plugins declared (%q, %q)", thoughterr.ErrManifestMalformed, themeName, name)
			}
			themeName = name
			themeResolved = rp
		case workspace.PluginKindHook:
			hookNames = append(hookNames, name)
		default:
			return nil, fmt.Errorf("%w: plugin %q has unrecognized kind %q", thoughterr.ErrManifestMalformed, name, rp.Manifest.Kind)
		}
	}

	if themeResolved == nil {
		return nil, fmt.Errorf("%w: no theme plugin declared in manifest", thoughterr.ErrManifestMalformed)
	}

	themeFP, err := pluginresolve.ThemeFingerprint(themeResolved.Dir)
	if err != nil {
		return nil, fmt.Errorf("compute theme fingerprint: %w", err)
	}

	theme, err := pluginhost.NewThemePlugin(ctx, host, themeName, themeResolved)
	if err != nil {
		return nil, err
	}

	hooks := make([]*pluginhost.HookPlugin, 0, len(hookNames))
	for _, name := range hookNames {
		hp, err := pluginhost.NewHookPlugin(ctx, host, name, resolved[name], ws)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, hp)
	}

	return &loadedPlugins{Theme: theme, ThemeDir: themeResolved.Dir, Hooks: hooks, ThemeFP: themeFP}, nil
}
