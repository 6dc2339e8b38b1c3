package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/thought-cms/thought/internal/thoughterr"
)

// rawManifest mirrors Thought.toml's top-level shape, with each plugin
// entry decoded lazily as a toml.Primitive so its locator variant can be
// classified by first-match field presence.
type rawManifest struct {
	Name        string                   `toml:"name"`
	Description string                   `toml:"description"`
	Owner       string                   `toml:"owner"`
	Plugins     map[string]toml.Primitive `toml:"plugins"`
}

// rawLocator carries every field any locator variant could declare; only
// the fields matching the variant actually present are populated.
type rawLocator struct {
	Version string `toml:"version"`
	Path    string `toml:"path"`
	URL     string `toml:"url"`
	Git     string `toml:"git"`
	Rev     string `toml:"rev"`
	Branch  string `toml:"branch"`
}

// classify applies an untagged first-match rule:
// { version } → Registry; { path } → Local; { url } → ArtifactUrl;
// { git, rev?, branch? } → Git.
func (r rawLocator) classify() (PluginLocator, error) {
	switch {
	case r.Version != "":
		return PluginLocator{Kind: LocatorRegistry, Version: r.Version}, nil
	case r.Path != "":
		return PluginLocator{Kind: LocatorLocal, Path: r.Path}, nil
	case r.URL != "":
		return PluginLocator{Kind: LocatorArtifactURL, URL: r.URL}, nil
	case r.Git != "":
		if r.Rev != "" && r.Branch != "" {
			return PluginLocator{}, thoughterr.ErrInvalidLocator
		}
		return PluginLocator{Kind: LocatorGit, GitURL: r.Git, Rev: r.Rev, Branch: r.Branch}, nil
	default:
		return PluginLocator{}, fmt.Errorf("%w: plugin entry has no recognizable locator fields", thoughterr.ErrManifestMalformed)
	}
}

// ParseManifest decodes a Thought.toml payload into a Manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw rawManifest
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", thoughterr.ErrManifestMalformed, err)
	}

	plugins := make(map[string]PluginLocator, len(raw.Plugins))
	for name, prim := range raw.Plugins {
		var rl rawLocator
		if err := toml.PrimitiveDecode(prim, &rl); err != nil {
			return nil, fmt.Errorf("%w: plugin %q: %v", thoughterr.ErrManifestMalformed, name, err)
		}
		locator, err := rl.classify()
		if err != nil {
			return nil, fmt.Errorf("plugin %q: %w", name, err)
		}
		plugins[name] = locator
	}

	// md.Keys() records keys in the order the TOML parser encountered
	// them, which is the only place plugin declaration order survives
	// decoding into a Go map.
	order := make([]string, 0, len(plugins))
	seen := make(map[string]bool, len(plugins))
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "plugins" && !seen[key[1]] {
			seen[key[1]] = true
			order = append(order, key[1])
		}
	}

	return &Manifest{
		Name:        raw.Name,
		Description: raw.Description,
		Owner:       raw.Owner,
		Plugins:     plugins,
		PluginOrder: order,
	}, nil
}

// LoadManifest reads and parses the workspace manifest at root.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, thoughterr.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return ParseManifest(data)
}

// ParsePluginManifest decodes a Plugin.toml payload.
func ParsePluginManifest(data []byte) (*PluginManifest, error) {
	var pm PluginManifest
	if _, err := toml.Decode(string(data), &pm); err != nil {
		return nil, fmt.Errorf("%w: %v", thoughterr.ErrManifestMalformed, err)
	}
	return &pm, nil
}

// LoadPluginManifest reads Plugin.toml from dir.
func LoadPluginManifest(dir string) (*PluginManifest, error) {
	path := filepath.Join(dir, PluginSidecarName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, thoughterr.ErrManifestMissing
		}
		return nil, err
	}
	return ParsePluginManifest(data)
}
