package pluginhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thought-cms/thought/internal/workspace"
)

func TestThemeGrants_AreEmpty(t *testing.T) {
	if ThemeGrants.AllowRandom || ThemeGrants.AllowClock {
		t.Fatal("theme plugins must not be granted random or clock access")
	}
	if len(ThemeGrants.PreopenDirs) != 0 {
		t.Fatal("theme plugins must not be granted any preopened directory")
	}
}

func TestHookGrants_MountsFixedDirectories(t *testing.T) {
	root := t.TempDir()
	if err := writeManifestForHost(t, root); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	grants, err := HookGrants(ws, "")
	if err != nil {
		t.Fatalf("HookGrants: %v", err)
	}
	if !grants.AllowRandom || !grants.AllowClock {
		t.Fatal("hook plugins must be granted random and clock access")
	}
	for _, guest := range []string{"/tmp", "/cache", "/assets"} {
		if _, ok := grants.PreopenDirs[guest]; !ok {
			t.Fatalf("expected %s to be a preopened directory", guest)
		}
	}
	if _, ok := grants.PreopenDirs["/build"]; ok {
		t.Fatal("did not expect /build without an explicit build dir")
	}
}

func TestHookGrants_WithBuildDir(t *testing.T) {
	root := t.TempDir()
	if err := writeManifestForHost(t, root); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	grants, err := HookGrants(ws, "/host/build/dir")
	if err != nil {
		t.Fatalf("HookGrants: %v", err)
	}
	if grants.PreopenDirs["/build"] != "/host/build/dir" {
		t.Fatalf("unexpected /build mount: %v", grants.PreopenDirs["/build"])
	}
}

func writeManifestForHost(t *testing.T, root string) error {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, workspace.ManifestFileName), []byte("name = \"test\"\ndescription = \"\"\nowner = \"me\"\n"), 0o644)
}
