package workspace

import (
	"os"
	"path/filepath"
)

// Traverse walks the content tree depth-first from the articles/
// directory, classifying each directory as a category (has
// Category.toml) or an article (has Article.toml). Emission order within
// a directory is os.ReadDir's order, which is sorted by file name.
//
// This eagerly collects both sequences rather than exposing a lazy
// iterator: workspace content trees are bounded by a single site's
// article count, and collecting up front lets the render engine fan the
// per-article work out across goroutines without holding a directory
// handle open for the duration of a build.
func (w *Workspace) Traverse() (articles [][]string, categories [][]string, err error) {
	err = w.walk(nil, &articles, &categories)
	return articles, categories, err
}

func (w *Workspace) walk(segments []string, articles, categories *[][]string) error {
	dir := w.categoryDir(segments)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		childSegs := append(append([]string{}, segments...), e.Name())
		childDir := filepath.Join(dir, e.Name())

		switch {
		case isArticleDir(childDir):
			*articles = append(*articles, childSegs)
		case isCategoryDir(childDir):
			*categories = append(*categories, childSegs)
			if err := w.walk(childSegs, articles, categories); err != nil {
				return err
			}
		}
	}
	return nil
}

// Articles returns every article's segment path under the workspace.
func (w *Workspace) Articles() ([][]string, error) {
	articles, _, err := w.Traverse()
	return articles, err
}

// Categories returns every category's segment path under the workspace.
func (w *Workspace) Categories() ([][]string, error) {
	_, categories, err := w.Traverse()
	return categories, err
}
