package command

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/publish"
)

// Put uploads the local package files at paths into repo's server-side
// upload area and adds them to repo, then refreshes every publish that
// depends on repo. The upload directory is always deleted, whether the add
// succeeds, fails, or ctx is cancelled first.
func Put(ctx context.Context, client *aptlyclient.Client, repo string, paths []string, forceReplace bool, listener Listener) ([]string, error) {
	if _, err := client.RepoShow(ctx, repo); err != nil {
		return nil, err
	}

	dir := fmt.Sprintf("%s_%d", repo, rand.Uint64())
	if listener != nil {
		listener(EventUploadStart{Repo: repo, Dir: dir, Files: len(paths)})
	}
	defer func() {
		if err := client.FilesDeleteDir(context.WithoutCancel(ctx), dir); err != nil && listener != nil {
			listener(EventCleanupFailed{Dir: dir, Err: err.Error()})
		}
	}()
	if _, err := client.FilesUpload(ctx, dir, paths); err != nil {
		return nil, err
	}

	report, err := client.RepoAddPackagesByDir(ctx, repo, dir, "", false, forceReplace)
	if err != nil {
		return nil, err
	}
	if listener != nil {
		for _, f := range report.Failed {
			listener(EventAddFailed{File: f})
		}
		for _, w := range report.Warnings {
			listener(EventAddWarning{Warning: w})
		}
	}

	newRefs := make([]string, len(report.Added))
	for i, a := range report.Added {
		newRefs[i] = repo + "/" + strings.Fields(a)[0]
	}

	if len(report.Added)+len(report.Removed) == 0 {
		if listener != nil {
			listener(EventNothingChanged{Op: "put"})
		}
		return newRefs, nil
	}

	if errs := publish.UpdateDependentPublishes(ctx, client, []string{repo}, false, publishListener(listener)); len(errs) > 0 {
		return newRefs, errors.Join(errs...)
	}
	return newRefs, nil
}
