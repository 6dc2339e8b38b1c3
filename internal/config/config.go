// Package config implements the ambient configuration loader shared by
// cmd/thought's subcommands: discover Thought.toml, parse it, and apply
// environment-variable overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/thought-cms/thought/internal/workspace"
)

// envPrefix namespaces every environment override this package honors.
const envPrefix = "THOUGHT_"

// ErrManifestNotFound is returned when no Thought.toml can be discovered.
var ErrManifestNotFound = errors.New("no workspace manifest found")

// Discover looks for Thought.toml directly under root.
func Discover(root string) (string, error) {
	candidate := filepath.Join(root, workspace.ManifestFileName)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, nil
	}
	return "", ErrManifestNotFound
}

// Load discovers (if path is empty) and parses a workspace manifest,
// then applies THOUGHT_NAME / THOUGHT_DESCRIPTION / THOUGHT_OWNER
// environment overrides on top; env vars win last.
//
// A .env file in root is loaded first via godotenv, best-effort.
func Load(root, path string) (*workspace.Manifest, error) {
	_ = godotenv.Load(filepath.Join(root, ".env")) //nolint:errcheck // best-effort

	if path == "" {
		discovered, err := Discover(root)
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	manifest, err := workspace.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", thoughterr.ErrManifestMalformed, err)
	}

	applyEnvOverrides(manifest)
	return manifest, nil
}

// applyEnvOverrides covers the three scalar fields workspace.Manifest
// exposes beyond its plugin map, which has no environment-variable
// surface.
func applyEnvOverrides(manifest *workspace.Manifest) {
	if v, ok := lookupEnv("NAME"); ok {
		manifest.Name = v
	}
	if v, ok := lookupEnv("DESCRIPTION"); ok {
		manifest.Description = v
	}
	if v, ok := lookupEnv("OWNER"); ok {
		manifest.Owner = v
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + strings.ToUpper(key))
	return v, ok
}
