// Package workspace implements the content store: the on-disk
// workspace layout, manifest parsing, article/category traversal,
// locale variants, and content fingerprinting.
package workspace

import (
	"time"
)

// ManifestFileName is the workspace manifest's on-disk name.
const ManifestFileName = "Thought.toml"

// CategorySidecarName is the per-directory category metadata file.
const CategorySidecarName = "Category.toml"

// ArticleSidecarName is the per-article metadata file.
const ArticleSidecarName = "Article.toml"

// PluginSidecarName is the manifest carried inside a resolved plugin dir.
const PluginSidecarName = "Plugin.toml"

// CacheDirName is the lazily-created workspace cache directory.
const CacheDirName = ".thought"

// ArticlesDirName is the content root under the workspace.
const ArticlesDirName = "articles"

// DefaultArticleFile is the default-locale markdown file for an article.
const DefaultArticleFile = "article.md"

// AssetsDirName is the optional per-article asset subdirectory.
const AssetsDirName = "assets"

// PluginKind distinguishes theme plugins from hook plugins.
type PluginKind string

const (
	PluginKindTheme PluginKind = "theme"
	PluginKindHook  PluginKind = "hook"
)

// LocatorKind tags which variant a PluginLocator holds.
type LocatorKind int

const (
	LocatorUnknown LocatorKind = iota
	LocatorRegistry
	LocatorGit
	LocatorLocal
	LocatorArtifactURL
)

// PluginLocator is the closed tagged sum describing where and how a
// plugin is materialized. Fields are populated
// according to Kind; only the matching fields are meaningful.
type PluginLocator struct {
	Kind LocatorKind

	// Registry
	Version string

	// Git
	GitURL string
	Rev    string
	Branch string

	// Local
	Path string

	// ArtifactURL
	URL string
}

// Manifest is the parsed workspace manifest (Thought.toml).
type Manifest struct {
	Name        string
	Description string
	Owner       string

	// Plugins maps plugin name to its locator, exactly as declared.
	Plugins map[string]PluginLocator

	// PluginOrder preserves the manifest's declaration order, since Go
	// maps do not — the hook chain must observe strict declaration
	// order.
	PluginOrder []string

	// The theme is not recorded here: a plugin's kind is known only
	// after its Plugin.toml has been fetched and read.
}

// PluginManifest is carried inside every resolved plugin directory
// (Plugin.toml).
type PluginManifest struct {
	Name        string     `toml:"name"`
	Author      string     `toml:"author"`
	Version     string     `toml:"version"`
	Kind        PluginKind `toml:"type"`
	Description string     `toml:"description"`
}

// Timestamp is the RFC 3339 creation time shared by article/category
// metadata.
type Timestamp struct {
	time.Time
}

// UnmarshalText lets Timestamp decode directly from TOML's native
// datetime or a quoted RFC 3339 string, e.g.
// `created = "2024-05-12T09:00:00Z"`.
func (t *Timestamp) UnmarshalText(data []byte) error {
	parsed, err := time.Parse(time.RFC3339, string(data))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalText renders the timestamp back to RFC 3339 for TOML
// round-tripping. Fingerprints hash Time.Unix() instead.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.Time.Format(time.RFC3339)), nil
}

// CategoryMetadata is the Category.toml sidecar payload.
type CategoryMetadata struct {
	Created     Timestamp `toml:"created"`
	Name        string    `toml:"name"`
	Description string    `toml:"description"`
}

// ArticleMetadata is the Article.toml sidecar payload.
type ArticleMetadata struct {
	Created     Timestamp `toml:"created"`
	Author      string    `toml:"author"`
	Tags        []string  `toml:"tags"`
	Description string    `toml:"description,omitempty"`
	Lang        string    `toml:"lang,omitempty"`
}

// Translation maps a locale to its translated title.
type Translation struct {
	Locale string `json:"locale"`
	Title  string `json:"title"`
}

// Category identifies a directory under the content root.
type Category struct {
	Segments []string
	Metadata CategoryMetadata
}

// ArticlePreview is the article projection consumed by generate-index
// and the search bundle.
type ArticlePreview struct {
	Title          string
	Slug           string
	CategorySegs   []string
	Metadata       ArticleMetadata
	Description    string
	Locale         string
	DefaultLocale  string
	Translations   []Translation
}

// Article is the fully-loaded, immutable article value.
type Article struct {
	Preview ArticlePreview
	Content string

	// Segments is the full path identifying the article under the
	// content root; the last element equals Preview.Slug.
	Segments []string
}

// Locale returns the article's requested locale.
func (a *Article) Locale() string { return a.Preview.Locale }

// DefaultLocale returns the article's primary language.
func (a *Article) DefaultLocale() string { return a.Preview.DefaultLocale }

// IsDefaultLocale reports whether this article value was opened in its
// default locale.
func (a *Article) IsDefaultLocale() bool {
	return a.Preview.Locale == a.Preview.DefaultLocale
}
