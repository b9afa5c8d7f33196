package aptlyclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

// RepoCreate creates a new local repository.
func (c *Client) RepoCreate(ctx context.Context, repo aptlytypes.Repository) (aptlytypes.Repository, error) {
	var result aptlytypes.Repository
	err := c.do(ctx, http.MethodPost, "/api/repos", requestOpts{json: repo}, &result)
	return result, err
}

// RepoShow returns one local repository's settings.
func (c *Client) RepoShow(ctx context.Context, name string) (aptlytypes.Repository, error) {
	var result aptlytypes.Repository
	err := c.do(ctx, http.MethodGet, "/api/repos/"+url.PathEscape(name), requestOpts{}, &result)
	return result, err
}

// RepoList lists every local repository.
func (c *Client) RepoList(ctx context.Context) ([]aptlytypes.Repository, error) {
	var result []aptlytypes.Repository
	err := c.do(ctx, http.MethodGet, "/api/repos", requestOpts{}, &result)
	return result, err
}

// RepoEdit updates a local repository's comment, default distribution, or
// default component.
func (c *Client) RepoEdit(ctx context.Context, name string, fields aptlytypes.Repository) (aptlytypes.Repository, error) {
	var result aptlytypes.Repository
	err := c.do(ctx, http.MethodPut, "/api/repos/"+url.PathEscape(name), requestOpts{json: fields}, &result)
	return result, err
}

// RepoDelete removes a local repository. force allows deletion even when
// snapshots were made from it.
func (c *Client) RepoDelete(ctx context.Context, name string, force bool) error {
	path := "/api/repos/" + url.PathEscape(name)
	if force {
		path += "?force=1"
	}
	return c.do(ctx, http.MethodDelete, path, requestOpts{}, nil)
}

// RepoAddPackagesByDir imports every package under upload directory dir
// (or, if file is non-empty, just that one file) into repo name. The
// returned report's Added entries have the server's trailing " added"
// annotation stripped.
func (c *Client) RepoAddPackagesByDir(ctx context.Context, name, dir, file string, noRemove, forceReplace bool) (aptlytypes.FilesReport, error) {
	path := "/api/repos/" + url.PathEscape(name) + "/file/" + url.PathEscape(dir)
	if file != "" {
		path += "/" + url.PathEscape(file)
	}
	q := url.Values{}
	if noRemove {
		q.Set("noRemove", "1")
	}
	if forceReplace {
		q.Set("forceReplace", "1")
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw struct {
		Report struct {
			Added    []string `json:"Added"`
			Removed  []string `json:"Removed"`
			Warnings []string `json:"Warnings"`
		} `json:"Report"`
		FailedFiles []string `json:"FailedFiles"`
	}
	if err := c.do(ctx, http.MethodPost, path, requestOpts{}, &raw); err != nil {
		return aptlytypes.FilesReport{}, err
	}

	added := make([]string, len(raw.Report.Added))
	for i, a := range raw.Report.Added {
		added[i] = strings.TrimSuffix(a, " added")
	}
	return aptlytypes.FilesReport{
		Failed:   raw.FailedFiles,
		Added:    added,
		Removed:  raw.Report.Removed,
		Warnings: raw.Report.Warnings,
	}, nil
}

// RepoAddPackagesByKey copies packages already known to the server (by
// aptly key) into repo name.
func (c *Client) RepoAddPackagesByKey(ctx context.Context, name string, keys []string) (aptlytypes.Repository, error) {
	path := "/api/repos/" + url.PathEscape(name) + "/packages"
	body := map[string]any{"PackageRefs": keys}
	var result aptlytypes.Repository
	err := c.do(ctx, http.MethodPost, path, requestOpts{json: body}, &result)
	return result, err
}

// RepoDeletePackagesByKey removes packages (by aptly key) from repo name.
func (c *Client) RepoDeletePackagesByKey(ctx context.Context, name string, keys []string) (aptlytypes.Repository, error) {
	path := "/api/repos/" + url.PathEscape(name) + "/packages"
	body := map[string]any{"PackageRefs": keys}
	var result aptlytypes.Repository
	err := c.do(ctx, http.MethodDelete, path, requestOpts{json: body}, &result)
	return result, err
}

// RepoSearch searches a local repository's packages.
func (c *Client) RepoSearch(ctx context.Context, name, query string, withDeps, details bool) ([]Package, error) {
	return c.search(ctx, "repos", name, query, withDeps, details)
}
