package command

import (
	"context"
	"errors"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlypkg"
	"github.com/cyril-s/aptly-ctl-go/debversion"
	"github.com/cyril-s/aptly-ctl-go/publish"
	"github.com/cyril-s/aptly-ctl-go/rotate"
)

// RotateRepo lists repo's packages, selects the ones rotate.Rotate deems
// eligible for deletion at n, and, unless dryRun, deletes them and
// refreshes every dependent publish. It talks to the one repo directly
// rather than going through search.Engine, since there is nothing to fan
// out across.
func RotateRepo(ctx context.Context, client *aptlyclient.Client, repo string, n int, dryRun bool, listener Listener) ([]string, error) {
	pkgs, err := client.RepoSearch(ctx, repo, "", false, false)
	if err != nil {
		return nil, err
	}

	toDelete := rotate.Rotate(n, pkgs, packageBucketKey, packageLess)
	if len(toDelete) == 0 {
		if listener != nil {
			listener(EventNothingChanged{Op: "rotate"})
		}
		return nil, nil
	}

	keys := make([]string, len(toDelete))
	for i, p := range toDelete {
		keys[i] = p.Key
		if listener != nil {
			listener(EventRotateCandidate{Repo: repo, Key: p.Key})
		}
	}

	if dryRun {
		return keys, nil
	}

	if _, err := client.RepoDeletePackagesByKey(ctx, repo, keys); err != nil {
		return nil, err
	}

	if errs := publish.UpdateDependentPublishes(ctx, client, []string{repo}, false, publishListener(listener)); len(errs) > 0 {
		return keys, errors.Join(errs...)
	}
	return keys, nil
}

func packageBucketKey(p aptlyclient.Package) string {
	k, err := aptlypkg.FromKey(p.Key)
	if err != nil {
		return p.Key
	}
	return k.Prefix + k.Arch + k.Name
}

func packageLess(a, b aptlyclient.Package) bool {
	ka, erra := aptlypkg.FromKey(a.Key)
	kb, errb := aptlypkg.FromKey(b.Key)
	if erra != nil || errb != nil {
		return a.Key < b.Key
	}
	return debversion.Compare(ka.Version, kb.Version) < 0
}
