package pluginresolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/thought-cms/thought/internal/thoughterr"
	"github.com/thought-cms/thought/internal/workspace"
)

// fetchGit materializes a Git{url, rev?, branch?} locator: for
// github.com URLs, first try a release asset (*.wasm or
// *.tar.gz/*.zip); fall back to cloning the repository.
func fetchGit(ctx context.Context, locator workspace.PluginLocator, dir string) error {
	if author, repo, ok := parseGitHub(locator.GitURL); ok {
		tag := locator.Rev
		if tag == "" {
			tag = locator.Branch
		}
		ok, err := tryGitHubRelease(ctx, author, repo, tag, dir)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return cloneRepo(locator.GitURL, locator.Rev, locator.Branch, dir)
}

// parseGitHub extracts (author, repo) from a github.com URL.
func parseGitHub(rawURL string) (author, repo string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "github.com" {
		return "", "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", "", false
	}
	author = segments[0]
	repo = strings.TrimSuffix(segments[1], ".git")
	return author, repo, true
}

// tryGitHubRelease attempts the GitHub releases fast path: download a
// *.wasm asset directly, or unpack a *.tar.gz/*.zip asset; returns
// ok=false on any non-success API response so the caller falls back to
// cloning.
func tryGitHubRelease(ctx context.Context, author, repo, tag, dir string) (bool, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", author, repo)
	if tag != "" {
		apiURL = fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/tags/%s", author, repo, tag)
	}

	data, err := httpGetAllowNotFound(ctx, apiURL)
	if err != nil {
		return false, nil //nolint:nilerr // non-success release lookup falls back to clone
	}
	assets, err := parseReleaseAssets(data)
	if err != nil || len(assets) == 0 {
		return false, nil
	}

	for _, asset := range assets {
		switch {
		case strings.HasSuffix(asset.Name, ".wasm"):
			bytes, err := httpGet(ctx, asset.DownloadURL)
			if err != nil {
				return false, err
			}
			if err := writeFile(dir, "main.wasm", bytes); err != nil {
				return false, err
			}
			return true, nil
		case strings.HasSuffix(asset.Name, ".tar.gz") || strings.HasSuffix(asset.Name, ".tgz"):
			bytes, err := httpGet(ctx, asset.DownloadURL)
			if err != nil {
				return false, err
			}
			if err := unpackTarGz(bytes, dir); err != nil {
				return false, err
			}
			if err := flattenDirectory(dir); err != nil {
				return false, err
			}
			return true, nil
		case strings.HasSuffix(asset.Name, ".zip"):
			bytes, err := httpGet(ctx, asset.DownloadURL)
			if err != nil {
				return false, err
			}
			if err := unpackZip(bytes, dir); err != nil {
				return false, err
			}
			if err := flattenDirectory(dir); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// cloneRepo clones url into dir, then checks out rev or branch.
func cloneRepo(gitURL, rev, branch string, dir string) error {
	opts := &git.CloneOptions{URL: gitURL}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainClone(dir, false, opts)
	if err != nil {
		return fmt.Errorf("%w: clone %s: %v", thoughterr.ErrVersionControl, gitURL, err)
	}

	if rev == "" {
		return nil
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("%w: resolve revision %s: %v", thoughterr.ErrVersionControl, rev, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: %v", thoughterr.ErrVersionControl, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return fmt.Errorf("%w: checkout %s: %v", thoughterr.ErrVersionControl, rev, err)
	}
	return nil
}
