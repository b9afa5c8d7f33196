package publish

import (
	"context"
	"fmt"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
)

// UpdateError reports that refreshing one dependent publish failed.
type UpdateError struct {
	FullPrefix   string
	Distribution string
	Err          error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update publish %s/%s: %v", e.FullPrefix, e.Distribution, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// UpdateDependentPublishes finds every local-repository-sourced publish
// that references one of changedStoreNames and refreshes it. A failure
// updating one publish is recorded and does not stop the rest from being
// attempted, since partial repair is preferable to an all-or-nothing abort. When
// dryRun is true, no PublishUpdate call is made; a would-update event is
// emitted for each candidate instead.
func UpdateDependentPublishes(ctx context.Context, client *aptlyclient.Client, changedStoreNames []string, dryRun bool, listener Listener) []error {
	names := make(map[string]bool, len(changedStoreNames))
	for _, n := range changedStoreNames {
		names[n] = true
	}

	publishes, err := client.PublishList(ctx)
	if err != nil {
		return []error{err}
	}

	var errs []error
	for _, p := range publishes {
		if p.SourceKind != "local" || !p.HasSource(names) {
			continue
		}

		if dryRun {
			if listener != nil {
				listener(EventPublishWouldUpdate{FullPrefix: p.FullPrefix(), Distribution: p.Distribution})
			}
			continue
		}

		_, err := client.PublishUpdate(ctx, p.Storage, p.Prefix, p.Distribution, aptlyclient.PublishUpdateParams{
			SourceKind: p.SourceKind,
		})
		if err != nil {
			errs = append(errs, &UpdateError{FullPrefix: p.FullPrefix(), Distribution: p.Distribution, Err: err})
			if listener != nil {
				listener(EventPublishUpdateFailed{FullPrefix: p.FullPrefix(), Distribution: p.Distribution, Err: err.Error()})
			}
			continue
		}
		if listener != nil {
			listener(EventPublishUpdated{FullPrefix: p.FullPrefix(), Distribution: p.Distribution})
		}
	}

	return errs
}
