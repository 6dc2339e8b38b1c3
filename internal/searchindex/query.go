package searchindex

import (
	"context"
	"fmt"
	"sort"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/thought-cms/thought/internal/thoughterr"
)

// Query runs the schema's default parser (title/content OR'd) plus,
// for every Unicode word in q, a fuzzy subquery against both fields
// and an adjacent-transposition probe, all combined as Should clauses.
// Duplicate slugs across locale variants keep only the default-locale
// hit.
func (idx *Index) Query(ctx context.Context, q string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}

	disjuncts := []query.Query{bleve.NewQueryStringQuery(q)}
	for _, word := range splitWords(q) {
		for _, field := range []string{"title", "content"} {
			fq := bleve.NewFuzzyQuery(word)
			fq.SetField(field)
			fq.SetFuzziness(2)
			disjuncts = append(disjuncts, fq)
		}
		// bleve's fuzzy query is pure Levenshtein; approximate a
		// transposition-cost-1 edit by also matching every
		// adjacent-rune-swap variant of the word.
		for _, swapped := range adjacentTranspositions(word) {
			mq := bleve.NewMatchQuery(swapped)
			disjuncts = append(disjuncts, mq)
		}
	}

	sq := bleve.NewDisjunctionQuery(disjuncts...)
	req := bleve.NewSearchRequestOptions(sq, topK*4, 0, false)
	req.Fields = []string{"permalink", "title", "locale", "default_locale", "slug"}

	res, err := idx.bleveIdx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", thoughterr.ErrIndexQuery, err)
	}

	type ranked struct {
		permalink, title, locale, defaultLocale string
		score                                   float64
	}
	bySlug := map[string]ranked{}
	order := make([]string, 0, len(res.Hits))

	for _, hit := range res.Hits {
		slug, _ := hit.Fields["slug"].(string)
		locale, _ := hit.Fields["locale"].(string)
		defaultLocale, _ := hit.Fields["default_locale"].(string)
		title, _ := hit.Fields["title"].(string)
		permalink, _ := hit.Fields["permalink"].(string)
		r := ranked{permalink: permalink, title: title, locale: locale, defaultLocale: defaultLocale, score: hit.Score}

		existing, seen := bySlug[slug]
		if !seen {
			order = append(order, slug)
			bySlug[slug] = r
			continue
		}
		// Prefer the default-locale hit when one surfaces later.
		if locale == defaultLocale && existing.locale != existing.defaultLocale {
			bySlug[slug] = r
		}
	}

	hits := make([]Hit, 0, len(order))
	for _, slug := range order {
		r := bySlug[slug]
		hits = append(hits, Hit{Permalink: r.permalink, Title: r.title, Score: r.score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// splitWords splits q into Unicode words on letter/digit boundaries.
func splitWords(q string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// adjacentTranspositions returns, for each adjacent rune pair in word,
// the variant with that pair swapped — a transposition-cost-1 probe
// bleve's built-in fuzzy query does not model on its own.
func adjacentTranspositions(word string) []string {
	runes := []rune(word)
	if len(runes) < 2 {
		return nil
	}
	variants := make([]string, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		swapped := append([]rune(nil), runes...)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		variants = append(variants, string(swapped))
	}
	return variants
}
