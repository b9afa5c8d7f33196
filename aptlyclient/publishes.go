package aptlyclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

// PublishCreateParams describes a new publish. NotAutomatic and
// ButAutomaticUpgrades accept nil (omit), bool true ("yes") or bool false
// (omit); any other value is rejected, since the server only understands
// the string "yes" for these flags.
type PublishCreateParams struct {
	SourceKind           string
	Sources              []aptlytypes.Source
	Storage              string
	Prefix               string
	Distribution         string
	Architectures        []string
	Label                string
	Origin               string
	NotAutomatic         any
	ButAutomaticUpgrades any
	AcquireByHash        bool
	ForceOverwrite       bool
	SkipCleanup          bool
}

// encodeAutomaticFlag implements the NotAutomatic/ButAutomaticUpgrades wire
// encoding: true becomes "yes", false or nil is omitted (empty string),
// anything else is a configuration error.
func encodeAutomaticFlag(name string, v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case bool:
		if val {
			return "yes", nil
		}
		return "", nil
	default:
		return "", &aptlyerr.ConfigurationError{
			Msg: fmt.Sprintf("%s: only a bool is supported, got %v (%T)", name, v, v),
		}
	}
}

// PublishCreate materializes a new publish.
func (c *Client) PublishCreate(ctx context.Context, p PublishCreateParams) (aptlytypes.Publish, error) {
	notAuto, err := encodeAutomaticFlag("NotAutomatic", p.NotAutomatic)
	if err != nil {
		return aptlytypes.Publish{}, err
	}
	butAuto, err := encodeAutomaticFlag("ButAutomaticUpgrades", p.ButAutomaticUpgrades)
	if err != nil {
		return aptlytypes.Publish{}, err
	}

	// The signing override map is keyed by the storage-qualified full
	// prefix, so "s3:bucket/stretch" and "bucket/stretch" are distinct.
	pub := aptlytypes.Publish{Storage: p.Storage, Prefix: p.Prefix}
	body := map[string]any{
		"SourceKind": p.SourceKind,
		"Sources":    p.Sources,
		"Signing":    c.Signing.Resolve(pub.FullPrefix(), p.Distribution),
	}
	if p.Distribution != "" {
		body["Distribution"] = p.Distribution
	}
	if len(p.Architectures) > 0 {
		body["Architectures"] = p.Architectures
	}
	if p.Label != "" {
		body["Label"] = p.Label
	}
	if p.Origin != "" {
		body["Origin"] = p.Origin
	}
	if notAuto != "" {
		body["NotAutomatic"] = notAuto
	}
	if butAuto != "" {
		body["ButAutomaticUpgrades"] = butAuto
	}
	if p.AcquireByHash {
		body["AcquireByHash"] = true
	}

	path := "/api/publish"
	if esc := pub.FullPrefixEscaped(); esc != "" {
		path += "/" + esc
	}

	q := url.Values{}
	if p.ForceOverwrite {
		q.Set("forceOverwrite", "1")
	}
	if p.SkipCleanup {
		q.Set("skipCleanup", "1")
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result aptlytypes.Publish
	err = c.do(ctx, http.MethodPost, path, requestOpts{json: body}, &result)
	return result, err
}

// PublishList lists every publish on the server.
func (c *Client) PublishList(ctx context.Context) ([]aptlytypes.Publish, error) {
	var result []aptlytypes.Publish
	err := c.do(ctx, http.MethodGet, "/api/publish", requestOpts{}, &result)
	return result, err
}

// PublishUpdateParams describes a republish. Snapshots is sent only when
// SourceKind is "snapshot", switching a snapshot-sourced publish to a new
// set of snapshots.
type PublishUpdateParams struct {
	SourceKind     string
	Snapshots      []aptlytypes.Source
	ForceOverwrite bool
}

// PublishUpdate refreshes an existing publish to match its source
// repositories' (or, for snapshot-kind publishes, a new set of snapshots')
// current contents.
func (c *Client) PublishUpdate(ctx context.Context, storage, prefix, distribution string, params PublishUpdateParams) (aptlytypes.Publish, error) {
	pub := aptlytypes.Publish{Storage: storage, Prefix: prefix}
	body := map[string]any{"Signing": c.Signing.Resolve(pub.FullPrefix(), distribution)}
	if params.SourceKind == "snapshot" && len(params.Snapshots) > 0 {
		body["Snapshots"] = params.Snapshots
	}

	path := publishPath(storage, prefix, distribution)
	if params.ForceOverwrite {
		path += "?forceOverwrite=1"
	}

	var result aptlytypes.Publish
	err := c.do(ctx, http.MethodPut, path, requestOpts{json: body}, &result)
	return result, err
}

// PublishDrop removes a publish. force allows dropping it even when its
// storage still has published files that would otherwise block removal.
func (c *Client) PublishDrop(ctx context.Context, storage, prefix, distribution string, force bool) error {
	path := publishPath(storage, prefix, distribution)
	if force {
		path += "?force=1"
	}
	return c.do(ctx, http.MethodDelete, path, requestOpts{}, nil)
}

func publishPath(storage, prefix, distribution string) string {
	temp := aptlytypes.Publish{Storage: storage, Prefix: prefix}
	path := "/api/publish"
	if esc := temp.FullPrefixEscaped(); esc != "" {
		path += "/" + esc
	}
	if distribution != "" {
		path += "/" + distribution
	}
	return path
}
