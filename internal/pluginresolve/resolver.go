// Package pluginresolve fetches, clones, downloads, or copies plugin
// sources into the workspace's cache directory, and (on demand) invokes
// the guest toolchain to build an artifact.
package pluginresolve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/thought-cms/thought/internal/workspace"
)

// ResolvedPlugin is a materialized plugin directory.
type ResolvedPlugin struct {
	Dir      string
	Manifest *workspace.PluginManifest
	Built    bool
}

// WasmPath returns the component binary path inside Dir.
func (r *ResolvedPlugin) WasmPath() string { return filepath.Join(r.Dir, "main.wasm") }

// locatorSidecar records the locator used to populate a plugin cache dir
// (persisted as ".locator.json").
type locatorSidecar struct {
	Kind    workspace.LocatorKind `json:"kind"`
	Version string                `json:"version,omitempty"`
	GitURL  string                `json:"git_url,omitempty"`
	Rev     string                `json:"rev,omitempty"`
	Branch  string                `json:"branch,omitempty"`
	Path    string                `json:"path,omitempty"`
	URL     string                `json:"url,omitempty"`
}

func toSidecar(l workspace.PluginLocator) locatorSidecar {
	return locatorSidecar{
		Kind: l.Kind, Version: l.Version, GitURL: l.GitURL, Rev: l.Rev,
		Branch: l.Branch, Path: l.Path, URL: l.URL,
	}
}

func (s locatorSidecar) equals(l workspace.PluginLocator) bool {
	o := toSidecar(l)
	return s == o
}

// sanitizeName replaces path-hostile characters in a plugin name so it
// can be used as a cache directory name.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-")
	return replacer.Replace(name)
}

// Resolver materializes plugins into a workspace's cache directory.
type Resolver struct {
	Log zerolog.Logger
}

// Resolve fetches/clones/downloads/copies the plugin named name
// according to locator, reusing an existing cache materialization when
// its recorded locator still matches and the plugin isn't a Local one.
// Local plugins always re-copy and rebuild, since their source can
// change on disk without the resolver noticing.
func (r *Resolver) Resolve(ctx context.Context, ws *workspace.Workspace, name string, locator workspace.PluginLocator) (*ResolvedPlugin, error) {
	cacheDir, err := ws.CacheDir()
	if err != nil {
		return nil, err
	}
	pluginRoot := filepath.Join(cacheDir, "plugins")
	if err := os.MkdirAll(pluginRoot, 0o755); err != nil {
		return nil, err
	}
	dir := filepath.Join(pluginRoot, sanitizeName(name))

	if locator.Kind != workspace.LocatorLocal {
		if reused, ok := r.tryReuse(dir, locator); ok {
			return reused, nil
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	switch locator.Kind {
	case workspace.LocatorRegistry:
		if err := fetchRegistry(ctx, name, locator.Version, dir); err != nil {
			return nil, err
		}
	case workspace.LocatorGit:
		if locator.Rev != "" && locator.Branch != "" {
			return nil, thoughterr.ErrInvalidLocator
		}
		if err := fetchGit(ctx, locator, dir); err != nil {
			return nil, err
		}
	case workspace.LocatorLocal:
		if err := copyLocal(locator.Path, dir); err != nil {
			return nil, err
		}
	case workspace.LocatorArtifactURL:
		if err := fetchArtifactURL(ctx, locator.URL, dir); err != nil {
			return nil, err
		}
	default:
		return nil, thoughterr.ErrInvalidLocator
	}

	if err := writeLocatorSidecar(dir, locator); err != nil {
		return nil, err
	}

	manifest, err := workspace.LoadPluginManifest(dir)
	if err != nil {
		return nil, err
	}

	return &ResolvedPlugin{Dir: dir, Manifest: manifest}, nil
}

// tryReuse returns an existing materialization when dir's recorded
// locator (.locator.json) matches locator exactly.
func (r *Resolver) tryReuse(dir string, locator workspace.PluginLocator) (*ResolvedPlugin, bool) {
	sidecarPath := filepath.Join(dir, ".locator.json")
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, false
	}
	var recorded locatorSidecar
	if err := json.Unmarshal(data, &recorded); err != nil {
		return nil, false
	}
	if !recorded.equals(locator) {
		return nil, false
	}
	manifest, err := workspace.LoadPluginManifest(dir)
	if err != nil {
		return nil, false
	}
	built := false
	if _, err := os.Stat(filepath.Join(dir, "main.wasm")); err == nil {
		built = true
	}
	return &ResolvedPlugin{Dir: dir, Manifest: manifest, Built: built}, true
}

func writeLocatorSidecar(dir string, locator workspace.PluginLocator) error {
	data, err := json.Marshal(toSidecar(locator))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ".locator.json"), data, 0o644)
}

func wrapNetwork(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", thoughterr.ErrNetworkFailure, err)
}
