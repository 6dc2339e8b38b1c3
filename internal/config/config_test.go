package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `
name = "my blog"
description = "a test blog"
owner = "Jane Doe"

[plugins.zenflow]
path = "../zenflow"
`

func writeManifest(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "Thought.toml"), []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover_FindsManifestInRoot(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)

	path, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := filepath.Join(dir, "Thought.toml")
	if path != want {
		t.Fatalf("Discover() = %q, want %q", path, want)
	}
}

func TestDiscover_MissingManifest(t *testing.T) {
	dir := t.TempDir()
	if _, err := Discover(dir); err != ErrManifestNotFound {
		t.Fatalf("Discover() error = %v, want ErrManifestNotFound", err)
	}
}

func TestLoad_DiscoversAndParses(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)

	manifest, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if manifest.Name != "my blog" {
		t.Fatalf("Name = %q", manifest.Name)
	}
	if manifest.Owner != "Jane Doe" {
		t.Fatalf("Owner = %q", manifest.Owner)
	}
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)

	t.Setenv("THOUGHT_NAME", "overridden name")
	t.Setenv("THOUGHT_OWNER", "overridden owner")

	manifest, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if manifest.Name != "overridden name" {
		t.Fatalf("Name = %q, want env override", manifest.Name)
	}
	if manifest.Owner != "overridden owner" {
		t.Fatalf("Owner = %q, want env override", manifest.Owner)
	}
	if manifest.Description != "a test blog" {
		t.Fatalf("Description = %q, want untouched", manifest.Description)
	}
}

func TestLoad_ExplicitPathOverridesDiscovery(t *testing.T) {
	dir := t.TempDir()
	altPath := filepath.Join(dir, "alt.toml")
	if err := os.WriteFile(altPath, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	manifest, err := Load(dir, altPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if manifest.Name != "my blog" {
		t.Fatalf("Name = %q", manifest.Name)
	}
}
