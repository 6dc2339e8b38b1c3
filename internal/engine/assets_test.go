package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyThemeAssets_NoAssetsDirIsNoop(t *testing.T) {
	themeDir := t.TempDir()
	outDir := t.TempDir()

	if err := copyThemeAssets(themeDir, outDir); err != nil {
		t.Fatalf("copyThemeAssets() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "assets")); !os.IsNotExist(err) {
		t.Fatalf("expected no assets dir to be created, got err=%v", err)
	}
}

func TestCopyThemeAssets_CopiesTreeVerbatim(t *testing.T) {
	themeDir := t.TempDir()
	outDir := t.TempDir()

	assetsDir := filepath.Join(themeDir, "assets")
	if err := os.MkdirAll(filepath.Join(assetsDir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, "css", "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, "logo.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := copyThemeAssets(themeDir, outDir); err != nil {
		t.Fatalf("copyThemeAssets() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "assets", "css", "style.css"))
	if err != nil {
		t.Fatalf("reading copied file: %v", err)
	}
	if string(got) != "body{}" {
		t.Fatalf("copied css = %q", got)
	}

	got, err = os.ReadFile(filepath.Join(outDir, "assets", "logo.svg"))
	if err != nil {
		t.Fatalf("reading copied file: %v", err)
	}
	if string(got) != "<svg/>" {
		t.Fatalf("copied svg = %q", got)
	}
}
