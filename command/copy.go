package command

import (
	"context"
	"errors"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/publish"
)

// Copy copies packages already known to the server, identified by aptly
// key (optionally prefixed with their source repo as "repo/key" for
// readability), into target, then refreshes every publish that depends on
// target.
func Copy(ctx context.Context, client *aptlyclient.Client, target string, refs []string, dryRun bool, listener Listener) ([]string, error) {
	if len(refs) == 0 {
		return nil, &aptlyerr.ConfigurationError{Msg: "copy: no package references supplied"}
	}

	keys := make([]string, len(refs))
	for i, r := range refs {
		parsed, err := parseRef(r, target)
		if err != nil {
			return nil, err
		}
		if parsed.direct {
			return nil, &aptlyerr.ParseError{
				Kind: "package reference", Input: r,
				Msg: "copy requires a full aptly key (with files-hash), not a bare direct reference",
			}
		}
		keys[i] = parsed.Key.String()
	}

	if !dryRun {
		if _, err := client.RepoAddPackagesByKey(ctx, target, keys); err != nil {
			return nil, err
		}
	}

	newRefs := make([]string, len(keys))
	for i, k := range keys {
		newRefs[i] = target + "/" + k
	}

	if errs := publish.UpdateDependentPublishes(ctx, client, []string{target}, dryRun, publishListener(listener)); len(errs) > 0 {
		return newRefs, errors.Join(errs...)
	}
	return newRefs, nil
}
