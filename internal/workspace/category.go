package workspace

import (
	"os"
	"path/filepath"

	"github.com/thought-cms/thought/internal/thoughterr"
)

// categoryDir resolves the on-disk directory for a category's segments.
func (w *Workspace) categoryDir(segments []string) string {
	parts := append([]string{w.ContentDir()}, segments...)
	return filepath.Join(parts...)
}

// OpenCategory verifies the directory exists and carries a Category.toml
// sidecar, then parses it.
func (w *Workspace) OpenCategory(segments []string) (*Category, error) {
	dir := w.categoryDir(segments)
	sidecarPath := filepath.Join(dir, CategorySidecarName)
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, thoughterr.ErrArticleNotFound
		}
		return nil, err
	}

	var meta CategoryMetadata
	if err := decodeTOMLInto(data, &meta); err != nil {
		return nil, err
	}

	if err := w.verifyAncestorsAreCategories(segments); err != nil {
		return nil, err
	}

	return &Category{Segments: append([]string{}, segments...), Metadata: meta}, nil
}

// verifyAncestorsAreCategories checks that every directory strictly
// above segments also carries a Category.toml sidecar.
func (w *Workspace) verifyAncestorsAreCategories(segments []string) error {
	for i := 0; i < len(segments); i++ {
		dir := w.categoryDir(segments[:i])
		if _, err := os.Stat(filepath.Join(dir, CategorySidecarName)); err != nil {
			return thoughterr.ErrMalformedMetadata
		}
	}
	return nil
}

func isCategoryDir(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CategorySidecarName))
	return err == nil
}

func isArticleDir(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ArticleSidecarName))
	return err == nil
}
