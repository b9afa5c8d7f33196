package command

import (
	"context"
	"regexp"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlypkg"
	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
	"github.com/cyril-s/aptly-ctl-go/debversion"
	"github.com/cyril-s/aptly-ctl-go/rotate"
	"github.com/cyril-s/aptly-ctl-go/search"
)

// SearchOptions configures Search.
type SearchOptions struct {
	WithDeps    bool
	Details     bool
	Concurrency int
	// StoreFilter, if non-nil, restricts the search to repositories and
	// snapshots whose name it matches.
	StoreFilter *regexp.Regexp
	// RotateN, if non-zero, post-filters each (store, query) pair's
	// matches through rotate.Rotate before they are returned.
	RotateN  int
	Listener Listener
}

// Search lists every repository and snapshot on the server (filtered by
// opts.StoreFilter, if set) and fans queries out across all of them via
// search.Engine.Run, keeping its aggregation and cancellation semantics.
func Search(ctx context.Context, client *aptlyclient.Client, queries []string, opts SearchOptions) ([]search.PackageMatch, []*search.QueryError) {
	repos, err := client.RepoList(ctx)
	if err != nil {
		return nil, []*search.QueryError{{Err: err}}
	}
	snaps, err := client.SnapshotList(ctx)
	if err != nil {
		return nil, []*search.QueryError{{Err: err}}
	}

	var stores []aptlytypes.Store
	for _, r := range repos {
		if opts.StoreFilter == nil || opts.StoreFilter.MatchString(r.Name) {
			stores = append(stores, r)
		}
	}
	for _, s := range snaps {
		if opts.StoreFilter == nil || opts.StoreFilter.MatchString(s.Name) {
			stores = append(stores, s)
		}
	}

	eng := search.New(client)
	matches, errs := eng.Run(ctx, stores, queries, search.Options{
		WithDeps:    opts.WithDeps,
		Details:     opts.Details,
		Concurrency: opts.Concurrency,
		Listener:    searchListener(opts.Listener),
	})

	if opts.RotateN != 0 {
		matches = rotateMatches(matches, opts.RotateN)
	}
	return matches, errs
}

// rotateMatches applies rotate.Rotate within each (store, query) group
// independently, bucketing by the package's (prefix, arch, name) and
// sorting by Debian version.
func rotateMatches(matches []search.PackageMatch, n int) []search.PackageMatch {
	type groupKey struct {
		store, query string
	}
	groups := make(map[groupKey][]search.PackageMatch)
	var order []groupKey
	for _, m := range matches {
		gk := groupKey{m.Store.StoreName(), m.Query}
		if _, ok := groups[gk]; !ok {
			order = append(order, gk)
		}
		groups[gk] = append(groups[gk], m)
	}

	var out []search.PackageMatch
	for _, gk := range order {
		out = append(out, rotate.Rotate(n, groups[gk], matchBucketKey, matchLess)...)
	}
	return out
}

func matchBucketKey(m search.PackageMatch) string {
	k, err := aptlypkg.FromKey(m.Package.Key)
	if err != nil {
		return m.Package.Key
	}
	return k.Prefix + k.Arch + k.Name
}

func matchLess(a, b search.PackageMatch) bool {
	ka, erra := aptlypkg.FromKey(a.Package.Key)
	kb, errb := aptlypkg.FromKey(b.Package.Key)
	if erra != nil || errb != nil {
		return a.Package.Key < b.Package.Key
	}
	return debversion.Compare(ka.Version, kb.Version) < 0
}
