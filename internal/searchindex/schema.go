package searchindex

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/ngram"
	"github.com/blevesearch/bleve/v2/analysis/token/truncate"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	ngramFilterName    = "thought_ngram"
	truncateFilterName = "thought_truncate"
	analyzerName       = "thought_fulltext"
	maxTokenLength      = 32
)

// buildMapping constructs the index schema: title/content use a
// character n-gram (1-3) analyzer with lowercasing and a
// max-token-length cutoff; the remaining fields are stored, unanalyzed
// keyword fields kept verbatim for result reconstruction.
func buildMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomTokenFilter(ngramFilterName, map[string]interface{}{
		"type": ngram.Name,
		"min":  1.0,
		"max":  3.0,
	}); err != nil {
		return nil, err
	}
	if err := im.AddCustomTokenFilter(truncateFilterName, map[string]interface{}{
		"type":   truncate.Name,
		"length": float64(maxTokenLength),
	}); err != nil {
		return nil, err
	}
	if err := im.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":          "custom",
		"tokenizer":     "unicode",
		"token_filters": []string{truncateFilterName, lowercase.Name, ngramFilterName},
	}); err != nil {
		return nil, err
	}

	fulltext := bleve.NewTextFieldMapping()
	fulltext.Analyzer = analyzerName
	fulltext.Store = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("title", fulltext)
	doc.AddFieldMappingsAt("content", fulltext)
	for _, field := range []string{"description", "permalink", "locale", "default_locale", "slug", "category"} {
		doc.AddFieldMappingsAt(field, keyword)
	}

	im.DefaultMapping = doc
	return im, nil
}
