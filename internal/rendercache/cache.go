// Package rendercache implements the render cache: a durable mapping
// from an article's output path to its last rendered HTML, keyed also
// by a fingerprint of the article and the theme that produced it, so an
// unchanged article under an unchanged theme skips re-rendering
// entirely.
//
// Backed by go.etcd.io/bbolt, a single-writer/multi-reader embedded KV
// store.
package rendercache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/thought-cms/thought/internal/workspace"
)

var bucketName = []byte("render_cache")

// CachedEntry is the gob-encoded value stored per output path.
type CachedEntry struct {
	ArticleSHA256    string
	Title            string
	Description      string
	MetadataSHA256   string
	HTML             string
	ThemeFingerprint string
}

// Cache owns cache.redb for the lifetime of the engine run.
type Cache struct {
	db *bbolt.DB
}

// Open opens or creates cache.redb and ensures its single bucket
// exists.
func Open(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", thoughterr.ErrCacheTransaction, path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init bucket: %v", thoughterr.ErrCacheTransaction, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// metadataFingerprint hashes the cache-key-relevant fields of
// ArticleMetadata, kept distinct from the full article content hash so
// a metadata-only edit (e.g. retagging) still invalidates the cache
// even though workspace.Article.SHA256 already folds metadata in.
func metadataFingerprint(meta workspace.ArticleMetadata) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%v|%s|%s", meta.Author, meta.Tags, meta.Description, meta.Lang)))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached HTML for outputPath iff every fingerprint
// field still matches the live article and the current theme
// fingerprint. A decode failure (corrupt or stale-schema entry) is
// treated as a miss rather than a fatal error.
func (c *Cache) Lookup(outputPath string, article *workspace.Article, themeFP string) (string, bool) {
	var entry CachedEntry
	var found bool
	_ = c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(outputPath))
		if raw == nil {
			return nil
		}
		dec := gob.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return "", false
	}

	if entry.ArticleSHA256 != article.SHA256() {
		return "", false
	}
	if entry.Title != article.Preview.Title || entry.Description != article.Preview.Description {
		return "", false
	}
	if entry.MetadataSHA256 != metadataFingerprint(article.Preview.Metadata) {
		return "", false
	}
	if entry.ThemeFingerprint != themeFP {
		return "", false
	}
	return entry.HTML, true
}

// Store writes the rendered HTML and its fingerprints for outputPath.
// I/O or transaction failures propagate as a fatal CacheError rather
// than being swallowed: a failed write leaves the workspace in a state
// a later run cannot trust without one.
func (c *Cache) Store(outputPath string, article *workspace.Article, html, themeFP string) error {
	entry := CachedEntry{
		ArticleSHA256:    article.SHA256(),
		Title:            article.Preview.Title,
		Description:      article.Preview.Description,
		MetadataSHA256:   metadataFingerprint(article.Preview.Metadata),
		HTML:             html,
		ThemeFingerprint: themeFP,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("%w: %s: %v", thoughterr.ErrCacheSerialize, outputPath, err)
	}

	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte(outputPath), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("%w: store %s: %v", thoughterr.ErrCacheTransaction, outputPath, err)
	}
	return nil
}
