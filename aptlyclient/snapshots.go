package aptlyclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

// SnapshotCreateFromRepo snapshots a local repository's current package set
// under a new name.
func (c *Client) SnapshotCreateFromRepo(ctx context.Context, repoName, snapshotName, description string) (aptlytypes.Snapshot, error) {
	path := "/api/repos/" + url.PathEscape(repoName) + "/snapshots"
	body := map[string]any{"Name": snapshotName}
	if description != "" {
		body["Description"] = description
	}
	var result aptlytypes.Snapshot
	err := c.do(ctx, http.MethodPost, path, requestOpts{json: body}, &result)
	return result, err
}

// SnapshotCreateFromPackageKeys creates a snapshot directly from a package
// key list, optionally merging in other snapshots' contents.
func (c *Client) SnapshotCreateFromPackageKeys(ctx context.Context, name string, keys, sourceSnapshots []string, description string) (aptlytypes.Snapshot, error) {
	body := map[string]any{"Name": name}
	if len(keys) > 0 {
		body["PackageRefs"] = keys
	}
	if len(sourceSnapshots) > 0 {
		body["SourceSnapshots"] = sourceSnapshots
	}
	if description != "" {
		body["Description"] = description
	}
	var result aptlytypes.Snapshot
	err := c.do(ctx, http.MethodPost, "/api/snapshots", requestOpts{json: body}, &result)
	return result, err
}

// SnapshotShow returns one snapshot's settings.
func (c *Client) SnapshotShow(ctx context.Context, name string) (aptlytypes.Snapshot, error) {
	var result aptlytypes.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/snapshots/"+url.PathEscape(name), requestOpts{}, &result)
	return result, err
}

// SnapshotList lists every snapshot.
func (c *Client) SnapshotList(ctx context.Context) ([]aptlytypes.Snapshot, error) {
	var result []aptlytypes.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/snapshots", requestOpts{}, &result)
	return result, err
}

// SnapshotEdit renames a snapshot and/or changes its description.
func (c *Client) SnapshotEdit(ctx context.Context, name, newName, newDescription string) (aptlytypes.Snapshot, error) {
	body := map[string]any{}
	if newName != "" {
		body["Name"] = newName
	}
	if newDescription != "" {
		body["Description"] = newDescription
	}
	var result aptlytypes.Snapshot
	err := c.do(ctx, http.MethodPut, "/api/snapshots/"+url.PathEscape(name), requestOpts{json: body}, &result)
	return result, err
}

// SnapshotDelete removes a snapshot. force allows deletion even when other
// snapshots or publishes still reference it.
func (c *Client) SnapshotDelete(ctx context.Context, name string, force bool) error {
	path := "/api/snapshots/" + url.PathEscape(name)
	if force {
		path += "?force=1"
	}
	return c.do(ctx, http.MethodDelete, path, requestOpts{}, nil)
}

// DiffEntry is one row of a snapshot diff: a package present in one
// snapshot, the other, both at different versions, or neither.
type DiffEntry struct {
	Left  string `json:"Left"`
	Right string `json:"Right"`
}

// SnapshotDiff compares two snapshots' package contents.
func (c *Client) SnapshotDiff(ctx context.Context, left, right string) ([]DiffEntry, error) {
	path := "/api/snapshots/" + url.PathEscape(left) + "/diff/" + url.PathEscape(right)
	var result []DiffEntry
	err := c.do(ctx, http.MethodGet, path, requestOpts{}, &result)
	return result, err
}
