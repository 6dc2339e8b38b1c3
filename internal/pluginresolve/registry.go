package pluginresolve

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"github.com/thought-cms/thought/internal/thoughterr"
)

// registryHost is the default plugin registry.
const registryHost = "registry.thought.dev"

// fetchRegistry downloads and unpacks a Registry{version} locator: GET
// the versioned tarball, expect gzipped tar, unpack, flatten a single
// top-level directory.
func fetchRegistry(ctx context.Context, name, version, dir string) error {
	if _, err := semver.NewVersion(version); err != nil {
		return fmt.Errorf("%w: invalid registry version %q: %v", thoughterr.ErrInvalidLocator, version, err)
	}

	url := fmt.Sprintf("https://%s/api/v1/crates/%s/%s/download", registryHost, name, version)
	data, err := httpGet(ctx, url)
	if err != nil {
		return err
	}
	if err := unpackTarGz(data, dir); err != nil {
		return err
	}
	return flattenDirectory(dir)
}

// httpGet performs a GET and returns the response body, wrapping
// transport and non-2xx failures as thoughterr.ErrNetworkFailure.
func httpGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "thought")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, wrapNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: status %d", thoughterr.ErrNetworkFailure, url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
