package workspace

import (
	"os"
	"unicode"

	"golang.org/x/text/language"
)

// canonicalLocale normalizes a locale string to its canonical BCP-47
// form (e.g. "EN" -> "en", "zh-hans" -> "zh-Hans"). Invalid or
// unparseable tags pass through unchanged rather than erroring, since a
// locale segment name under content/ only has to be a stable
// directory-safe string, not a strictly valid tag.
func canonicalLocale(raw string) string {
	tag, err := language.Parse(raw)
	if err != nil {
		return raw
	}
	return tag.String()
}

// resolveDefaultLocale picks an article's default locale: explicit
// metadata.lang if non-empty; else language detection over
// article.md's content (or, if absent, any sibling variant); else "en".
func (w *Workspace) resolveDefaultLocale(meta ArticleMetadata, variants map[string]string) (string, error) {
	if meta.Lang != "" {
		return canonicalLocale(meta.Lang), nil
	}

	source := variants[""]
	if source == "" {
		for _, path := range variants {
			source = path
			break
		}
	}
	if source == "" {
		return "en", nil
	}

	content, err := os.ReadFile(source)
	if err != nil {
		return "en", err
	}

	if code, confidence, ok := detectLanguage(string(content)); ok && confidence >= 0.5 {
		return canonicalLocale(code), nil
	}
	return "en", nil
}

// script classification ranges used by detectLanguage: a small,
// dependency-free heuristic that classifies the dominant Unicode script
// over a content sample and accepts a result only when one script
// commands a majority.
type script struct {
	code  string
	table *unicode.RangeTable
}

var scripts = []script{
	{code: "zh", table: unicode.Han},
	{code: "ja", table: unicode.Hiragana},
	{code: "ko", table: unicode.Hangul},
	{code: "ru", table: unicode.Cyrillic},
	{code: "ar", table: unicode.Arabic},
	{code: "en", table: unicode.Latin},
}

// detectLanguage returns the dominant script's language code and the
// fraction of classified runes it accounts for.
func detectLanguage(content string) (code string, confidence float64, ok bool) {
	const sampleRunes = 2000
	counts := make(map[string]int, len(scripts))
	total := 0
	seen := 0
	for _, r := range content {
		if seen >= sampleRunes {
			break
		}
		if !unicode.IsLetter(r) {
			continue
		}
		seen++
		for _, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[s.code]++
				total++
				break
			}
		}
	}
	if total == 0 {
		return "", 0, false
	}

	best := ""
	bestCount := 0
	for _, s := range scripts {
		if c := counts[s.code]; c > bestCount {
			best = s.code
			bestCount = c
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, float64(bestCount) / float64(total), true
}
