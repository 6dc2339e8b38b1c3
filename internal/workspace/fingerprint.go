package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// canonicalMetadata is the metadata slice folded into the article
// fingerprint: created_unix, tags, author, description.
type canonicalMetadata struct {
	CreatedUnix int64    `json:"created_unix"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
}

type canonicalTranslation struct {
	Locale string `json:"locale"`
	Title  string `json:"title"`
}

// canonicalArticle is the field set folded into the article
// fingerprint, serialized deterministically via Go struct field
// order (encoding/json preserves declaration order for structs, unlike
// maps) so the hash is byte-stable across identical workspace copies on
// any host.
type canonicalArticle struct {
	Title        string                 `json:"title"`
	Slug         string                 `json:"slug"`
	CategoryPath []string               `json:"category_path"`
	Locale       string                 `json:"locale"`
	Metadata     canonicalMetadata      `json:"metadata"`
	Description  string                 `json:"description"`
	Content      string                 `json:"content"`
	Translations []canonicalTranslation `json:"translations"`
}

// SHA256 computes the article fingerprint: a hash of a canonical JSON
// serialization, invariant across byte-identical workspace copies on
// any host.
func (a *Article) SHA256() string {
	translations := make([]canonicalTranslation, 0, len(a.Preview.Translations))
	for _, t := range a.Preview.Translations {
		translations = append(translations, canonicalTranslation{Locale: t.Locale, Title: t.Title})
	}

	canon := canonicalArticle{
		Title:        a.Preview.Title,
		Slug:         a.Preview.Slug,
		CategoryPath: a.Preview.CategorySegs,
		Locale:       a.Preview.Locale,
		Metadata: canonicalMetadata{
			CreatedUnix: a.Preview.Metadata.Created.Time.Unix(),
			Tags:        a.Preview.Metadata.Tags,
			Author:      a.Preview.Metadata.Author,
			Description: a.Preview.Metadata.Description,
		},
		Description:  a.Preview.Description,
		Content:      a.Content,
		Translations: translations,
	}

	data, err := json.Marshal(canon)
	if err != nil {
		// canonicalArticle holds only strings/slices/ints; Marshal
		// cannot fail for this shape.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
