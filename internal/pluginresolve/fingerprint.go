package pluginresolve

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// excludedThemeDirs are skipped when computing the theme fingerprint:
// build outputs and version-control metadata, neither of which
// reflects the theme's actual source bytes.
var excludedThemeDirs = map[string]bool{
	"target": true,
	".git":   true,
}

// ThemeFingerprint hashes every file under dir (excluding build outputs
// and VCS directories), producing a content hash so any change to the
// theme's source bytes invalidates every cached render.
func ThemeFingerprint(dir string) (string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludedThemeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, rel := range paths {
		h.Write([]byte(rel))
		h.Write([]byte{0})
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			return "", err
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
