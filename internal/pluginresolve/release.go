package pluginresolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/thought-cms/thought/internal/thoughterr"
)

// releaseAsset is the subset of the GitHub release-asset JSON payload
// the resolver needs.
type releaseAsset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

type releasePayload struct {
	Assets []releaseAsset `json:"assets"`
}

func parseReleaseAssets(data []byte) ([]releaseAsset, error) {
	var payload releasePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload.Assets, nil
}

// httpGetAllowNotFound performs a GET, returning an error for any
// non-2xx response instead of treating it as fatal — the caller
// (tryGitHubRelease) uses a non-success response to mean "fall back to
// cloning".
func httpGetAllowNotFound(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "thought")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", thoughterr.ErrNetworkFailure, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func writeFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
