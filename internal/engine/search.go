package engine

import (
	"context"
	"fmt"

	"github.com/thought-cms/thought/internal/searchindex"
)

// ensureSearchIndexAndBundle rebuilds the inverted search index iff the
// content fingerprint changed, then re-emits the client search bundle
// unconditionally, since the bundle is cheap to regenerate and must
// stay in step with the rendered output tree.
func ensureSearchIndexAndBundle(ctx context.Context, cacheDir string, docs []searchindex.SourceDoc, combinedFP, outputDir string) error {
	idx, err := searchindex.Open(cacheDir)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer idx.Close()

	if err := idx.EnsureIndex(ctx, docs, combinedFP); err != nil {
		return fmt.Errorf("ensure search index: %w", err)
	}

	if err := searchindex.EmitBundle(outputDir, docs); err != nil {
		return fmt.Errorf("emit search bundle: %w", err)
	}
	return nil
}
