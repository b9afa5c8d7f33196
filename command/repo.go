package command

import (
	"context"
	"sort"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

// RepoList lists every local repository on the server, sorted by name.
func RepoList(ctx context.Context, client *aptlyclient.Client) ([]aptlytypes.Repository, error) {
	repos, err := client.RepoList(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	return repos, nil
}

// RepoCreate creates a local repository.
func RepoCreate(ctx context.Context, client *aptlyclient.Client, repo aptlytypes.Repository) (aptlytypes.Repository, error) {
	if repo.Name == "" {
		return aptlytypes.Repository{}, &aptlyerr.ConfigurationError{Msg: "repo create: a repository name is required"}
	}
	return client.RepoCreate(ctx, repo)
}

// RepoShow returns one repository's settings and, when withPackages, its
// package keys sorted lexically.
func RepoShow(ctx context.Context, client *aptlyclient.Client, name string, withPackages bool) (aptlytypes.Repository, []string, error) {
	repo, err := client.RepoShow(ctx, name)
	if err != nil {
		return aptlytypes.Repository{}, nil, err
	}
	if !withPackages {
		return repo, nil, nil
	}
	pkgs, err := client.RepoSearch(ctx, name, "", false, false)
	if err != nil {
		return repo, nil, err
	}
	keys := make([]string, len(pkgs))
	for i, p := range pkgs {
		keys[i] = p.Key
	}
	sort.Strings(keys)
	return repo, keys, nil
}

// RepoEdit updates a repository's comment, default distribution, or default
// component. Empty fields are left as they are.
func RepoEdit(ctx context.Context, client *aptlyclient.Client, name string, fields aptlytypes.Repository) (aptlytypes.Repository, error) {
	return client.RepoEdit(ctx, name, fields)
}

// RepoDelete removes a local repository. force allows deletion even when
// snapshots were made from it.
func RepoDelete(ctx context.Context, client *aptlyclient.Client, name string, force bool) error {
	return client.RepoDelete(ctx, name, force)
}
