package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/alitto/pond"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

// defaultConcurrency bounds in-flight search requests when Options.Concurrency
// is left at zero.
const defaultConcurrency = 8

// PackageMatch is one package found by one (store, query) pair.
type PackageMatch struct {
	Store   aptlytypes.Store
	Query   string
	Package aptlyclient.Package
}

// QueryError reports that searching one store for one query failed. The
// rest of the Cartesian product still runs to completion.
type QueryError struct {
	Store aptlytypes.Store
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Store == nil {
		return fmt.Sprintf("search: %v", e.Err)
	}
	return fmt.Sprintf("search %s %q: %v", e.Store.StoreName(), e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Options configures one Run.
type Options struct {
	WithDeps    bool
	Details     bool
	Concurrency int
	Listener    Listener
}

// Engine searches one Aptly server's repositories and snapshots.
type Engine struct {
	Client *aptlyclient.Client
}

// New builds an Engine backed by client.
func New(client *aptlyclient.Client) *Engine {
	return &Engine{Client: client}
}

// Run searches every store in stores for every query in queries (the
// Cartesian product of the two), bounding the number of concurrent HTTP
// requests to opts.Concurrency (default 8). A failed (store, query) pair
// does not stop the rest: every pair runs, and failures are returned
// alongside whatever matches the other pairs found. Cancelling ctx aborts
// any request still in flight and stops new ones from starting.
func (e *Engine) Run(ctx context.Context, stores []aptlytypes.Store, queries []string, opts Options) ([]PackageMatch, []*QueryError) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	pool := pond.New(concurrency, 0, pond.MinWorkers(1))

	var mu sync.Mutex
	var matches []PackageMatch
	var errs []*QueryError

	for _, store := range stores {
		for _, query := range queries {
			store, query := store, query
			pool.Submit(func() {
				if ctx.Err() != nil {
					return
				}
				if opts.Listener != nil {
					opts.Listener(EventQueryStart{Store: store.StoreName(), Query: query})
				}
				pkgs, err := e.Client.StoreSearch(ctx, store, query, opts.WithDeps, opts.Details)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, &QueryError{Store: store, Query: query, Err: err})
					if opts.Listener != nil {
						opts.Listener(EventQueryDone{Store: store.StoreName(), Query: query, Err: err.Error()})
					}
					return
				}
				for _, p := range pkgs {
					matches = append(matches, PackageMatch{Store: store, Query: query, Package: p})
				}
				if opts.Listener != nil {
					opts.Listener(EventQueryDone{Store: store.StoreName(), Query: query, Matched: len(pkgs)})
				}
			})
		}
	}

	pool.StopAndWait()
	return matches, errs
}
