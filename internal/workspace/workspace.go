package workspace

import (
	"os"
	"path/filepath"

	"github.com/thought-cms/thought/internal/thoughterr"
)

// Workspace is a shared, read-only handle on a workspace root and its
// parsed manifest. It is safe to share by value — a *Workspace is an
// immutable pointer to immutable manifest data; nothing under it
// mutates after Open.
type Workspace struct {
	root     string
	manifest *Manifest
}

// Open verifies the workspace manifest exists at root and parses it.
func Open(root string) (*Workspace, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, thoughterr.ErrWorkspaceNotFound
	}
	manifest, err := LoadManifest(root)
	if err != nil {
		return nil, err
	}
	return &Workspace{root: root, manifest: manifest}, nil
}

// OpenWithManifest builds a Workspace from a manifest already loaded by
// the caller (internal/config's discover-then-env-override pipeline)
// instead of re-parsing Thought.toml from disk.
func OpenWithManifest(root string, manifest *Manifest) (*Workspace, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, thoughterr.ErrWorkspaceNotFound
	}
	return &Workspace{root: root, manifest: manifest}, nil
}

// Root returns the workspace's filesystem root exactly as passed to Open.
func (w *Workspace) Root() string { return w.root }

// Manifest returns the parsed workspace manifest.
func (w *Workspace) Manifest() *Manifest { return w.manifest }

// ContentDir returns the articles/ directory under the workspace root.
func (w *Workspace) ContentDir() string { return filepath.Join(w.root, ArticlesDirName) }

// CacheDir returns the lazily-created .thought/ directory, ensuring it exists.
func (w *Workspace) CacheDir() (string, error) {
	dir := filepath.Join(w.root, CacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// PluginNames returns every plugin name declared in the manifest, in Go
// map iteration order (Manifest.PluginOrder holds declaration order).
// Plugin kind is not known here: the render engine resolves every
// plugin and asks the resolved PluginManifest.Kind.
func (w *Workspace) PluginNames() []string {
	names := make([]string, 0, len(w.manifest.Plugins))
	for name := range w.manifest.Plugins {
		names = append(names, name)
	}
	return names
}
