// Package searchindex implements the search index: an inverted
// full-text index over article title/content with fuzzy querying,
// backed by an incremental rebuild fingerprint so an unchanged content
// tree skips re-indexing entirely, plus emission of a client-side
// search bundle for the generated site.
//
// The inverted index is built on github.com/blevesearch/bleve/v2;
// go.etcd.io/bbolt stores the fingerprint metadata, the same embedded-KV
// choice made for internal/rendercache.
package searchindex

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.etcd.io/bbolt"

	"github.com/thought-cms/thought/internal/thoughterr"
)

const (
	indexDirName = "search_db"
	metaDBName   = "search_index.redb"
)

var (
	metaBucket     = []byte("meta")
	fingerprintKey = []byte("last_fingerprint")
)

// Hit is one ranked query result.
type Hit struct {
	Permalink string
	Title     string
	Score     float64
}

// Index owns the bleve inverted index and the fingerprint-meta store
// for the lifetime of the engine run.
type Index struct {
	bleveIdx bleve.Index
	meta     *bbolt.DB
}

// Open opens (creating if absent) the inverted index under
// <cacheDir>/search_db and the fingerprint store at
// <cacheDir>/search_index.redb.
func Open(cacheDir string) (*Index, error) {
	dir := filepath.Join(cacheDir, indexDirName)

	bleveIdx, err := bleve.Open(dir)
	if err == bleve.ErrorIndexPathDoesNotExist {
		indexMapping, mErr := buildMapping()
		if mErr != nil {
			return nil, fmt.Errorf("%w: build schema: %v", thoughterr.ErrIndexWrite, mErr)
		}
		bleveIdx, err = bleve.New(dir, indexMapping)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", thoughterr.ErrIndexWrite, dir, err)
	}

	metaDB, err := bbolt.Open(filepath.Join(cacheDir, metaDBName), 0o644, nil)
	if err != nil {
		bleveIdx.Close()
		return nil, fmt.Errorf("%w: open meta: %v", thoughterr.ErrIndexWrite, err)
	}
	err = metaDB.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		bleveIdx.Close()
		metaDB.Close()
		return nil, fmt.Errorf("%w: init meta bucket: %v", thoughterr.ErrIndexWrite, err)
	}

	return &Index{bleveIdx: bleveIdx, meta: metaDB}, nil
}

// Close releases the index and meta store handles.
func (idx *Index) Close() error {
	err1 := idx.bleveIdx.Close()
	err2 := idx.meta.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (idx *Index) lastFingerprint() string {
	var fp string
	_ = idx.meta.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(metaBucket)
		if b == nil {
			return nil
		}
		if v := b.Get(fingerprintKey); v != nil {
			fp = string(v)
		}
		return nil
	})
	return fp
}

func (idx *Index) storeFingerprint(fp string) error {
	return idx.meta.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(metaBucket)
		return b.Put(fingerprintKey, []byte(fp))
	})
}

// EnsureIndex rebuilds the index iff combinedFP differs from the last
// recorded build fingerprint. Per-document conversion is fanned out
// across GOMAXPROCS workers; bleve's Batch type is not safe for
// concurrent mutation, so the fanned-out work is limited to the
// CPU-bound Document conversion and a single goroutine commits the
// batch once all documents are ready.
func (idx *Index) EnsureIndex(ctx context.Context, docs []SourceDoc, combinedFP string) error {
	if idx.lastFingerprint() == combinedFP {
		return nil
	}

	converted := make([]Document, len(docs))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				converted[i] = toDocument(docs[i])
			}
		}()
	}
	for i := range docs {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", thoughterr.ErrIndexWrite, err)
	}

	batch := idx.bleveIdx.NewBatch()
	count, err := idx.bleveIdx.DocCount()
	if err != nil {
		return fmt.Errorf("%w: count docs: %v", thoughterr.ErrIndexWrite, err)
	}
	if count > 0 {
		existing, err := idx.bleveIdx.SearchInContext(ctx, bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false))
		if err != nil {
			return fmt.Errorf("%w: list docs: %v", thoughterr.ErrIndexWrite, err)
		}
		for _, h := range existing.Hits {
			batch.Delete(h.ID)
		}
	}
	for i, doc := range converted {
		if err := batch.Index(doc.Permalink, doc); err != nil {
			return fmt.Errorf("%w: batch doc %d: %v", thoughterr.ErrIndexWrite, i, err)
		}
	}
	if err := idx.bleveIdx.Batch(batch); err != nil {
		return fmt.Errorf("%w: commit batch: %v", thoughterr.ErrIndexWrite, err)
	}

	if err := idx.storeFingerprint(combinedFP); err != nil {
		return fmt.Errorf("%w: store fingerprint: %v", thoughterr.ErrIndexWrite, err)
	}
	return nil
}
