package workspace

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/thought-cms/thought/internal/thoughterr"
)

// decodeTOMLInto decodes a sidecar payload into dst, wrapping any parse
// failure as thoughterr.ErrMalformedMetadata
func decodeTOMLInto(data []byte, dst any) error {
	if _, err := toml.Decode(string(data), dst); err != nil {
		return fmt.Errorf("%w: %v", thoughterr.ErrMalformedMetadata, err)
	}
	return nil
}
