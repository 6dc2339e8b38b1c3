package engine

import (
	"path/filepath"
)

// outputPath computes an article's output file path from its category
// segments and slug, with a locale suffix before .html for non-default
// locales. The preview server's URL resolution must parse this back
// apart, so the two stay inverses of each other.
func outputPath(categorySegs []string, slug, locale, defaultLocale string) string {
	parts := append(append([]string{}, categorySegs...), slug)
	base := filepath.Join(parts...)
	if locale == defaultLocale {
		return base + ".html"
	}
	return base + "." + locale + ".html"
}
