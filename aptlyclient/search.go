package aptlyclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

// Package is one search result: its aptly key, and, when the search asked
// for details, every control field the server has for it.
type Package struct {
	Key    string
	Fields map[string]string
}

// SnapshotSearch searches a snapshot's packages.
func (c *Client) SnapshotSearch(ctx context.Context, name, query string, withDeps, details bool) ([]Package, error) {
	return c.search(ctx, "snapshots", name, query, withDeps, details)
}

// StoreSearch searches store (a Repository or Snapshot), dispatching to the
// right API path segment via its SearchSegment rather than a runtime type
// check.
func (c *Client) StoreSearch(ctx context.Context, store aptlytypes.Store, query string, withDeps, details bool) ([]Package, error) {
	return c.search(ctx, aptlytypes.SearchSegment(store), store.StoreName(), query, withDeps, details)
}

func (c *Client) search(ctx context.Context, segment, name, query string, withDeps, details bool) ([]Package, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if withDeps {
		q.Set("withDeps", "1")
	}
	if details {
		q.Set("format", "details")
	}
	path := "/api/" + segment + "/" + url.PathEscape(name) + "/packages"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	if details {
		var raw []map[string]string
		if err := c.do(ctx, http.MethodGet, path, requestOpts{}, &raw); err != nil {
			return nil, err
		}
		pkgs := make([]Package, len(raw))
		for i, m := range raw {
			pkgs[i] = Package{Key: m["Key"], Fields: m}
		}
		return pkgs, nil
	}

	var raw []string
	if err := c.do(ctx, http.MethodGet, path, requestOpts{}, &raw); err != nil {
		return nil, err
	}
	pkgs := make([]Package, len(raw))
	for i, k := range raw {
		pkgs[i] = Package{Key: k}
	}
	return pkgs, nil
}

// PackageShow returns the full control-field map for one package, by aptly
// key.
func (c *Client) PackageShow(ctx context.Context, key string) (map[string]string, error) {
	var result map[string]string
	err := c.do(ctx, http.MethodGet, "/api/packages/"+url.PathEscape(key), requestOpts{}, &result)
	return result, err
}
