package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/aptlypkg"
	"github.com/cyril-s/aptly-ctl-go/publish"
)

// Remove deletes packages, identified the same way as Copy accepts them,
// from their repos, then refreshes every publish that depends on a repo
// that was actually changed. A repo whose delete call fails is excluded
// from the publish update and its keys are returned as failed, but the
// other repos still proceed.
func Remove(ctx context.Context, client *aptlyclient.Client, refs []string, dryRun bool, listener Listener) ([]string, error) {
	byRepo := make(map[string][]string)
	var repoOrder []string

	for _, r := range refs {
		parsed, err := parseRef(r, "")
		if err != nil {
			return nil, err
		}
		key := parsed.Key
		if parsed.direct {
			key, err = resolveDirectRef(ctx, client, parsed.Repo, parsed.Key)
			if err != nil {
				return nil, err
			}
		}
		if _, ok := byRepo[parsed.Repo]; !ok {
			repoOrder = append(repoOrder, parsed.Repo)
		}
		byRepo[parsed.Repo] = append(byRepo[parsed.Repo], key.String())
	}

	if len(repoOrder) == 0 {
		return nil, &aptlyerr.ConfigurationError{Msg: "remove: no package references supplied"}
	}

	var errs []error
	var failed []string
	var changed []string
	for _, repo := range repoOrder {
		keys := byRepo[repo]
		if !dryRun {
			if _, err := client.RepoDeletePackagesByKey(ctx, repo, keys); err != nil {
				errs = append(errs, err)
				failed = append(failed, keys...)
				if listener != nil {
					listener(EventRemoveFailed{Repo: repo, Err: err.Error()})
				}
				continue
			}
		}
		changed = append(changed, repo)
	}

	if len(changed) == 0 {
		if listener != nil {
			listener(EventNothingChanged{Op: "remove"})
		}
		return failed, errors.Join(errs...)
	}

	if perrs := publish.UpdateDependentPublishes(ctx, client, changed, dryRun, publishListener(listener)); len(perrs) > 0 {
		errs = append(errs, perrs...)
	}
	return failed, errors.Join(errs...)
}

// resolveDirectRef looks up the files-hash for a hash-free direct reference
// by searching its repo with the direct reference itself as the query, which
// the server treats as an exact (name, version, architecture) match. Exactly
// one hit is expected; zero or more than one is an error.
func resolveDirectRef(ctx context.Context, client *aptlyclient.Client, repo string, partial aptlypkg.Key) (aptlypkg.Key, error) {
	results, err := client.RepoSearch(ctx, repo, partial.DirectRef(), false, false)
	if err != nil {
		return aptlypkg.Key{}, err
	}
	if len(results) != 1 {
		return aptlypkg.Key{}, &aptlyerr.ConfigurationError{
			Msg: fmt.Sprintf("resolving direct reference %q in repo %q to an aptly key returned %d matches", partial.DirectRef(), repo, len(results)),
		}
	}
	return aptlypkg.FromKey(results[0].Key)
}
