package engine

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// themeAssetsDirName is the optional asset subdirectory a theme plugin
// directory may carry.
const themeAssetsDirName = "assets"

// copyThemeAssets copies themeDir/assets verbatim into outputDir/assets,
// doing nothing if the theme carries no assets directory.
func copyThemeAssets(themeDir, outputDir string) error {
	src := filepath.Join(themeDir, themeAssetsDirName)
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	dest := filepath.Join(outputDir, themeAssetsDirName)
	return copyTree(src, dest)
}

// copyTree recursively copies a directory tree, preserving file modes.
// Files are enumerated with a "**/*" glob rather than a bare walk so the
// same matching rule governs both this and the locale-file lookup in
// internal/workspace.
func copyTree(src, dest string) error {
	matches, err := doublestar.Glob(os.DirFS(src), "**/*")
	if err != nil {
		return err
	}
	for _, rel := range matches {
		path := filepath.Join(src, rel)
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(path, target, info.Mode()); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
