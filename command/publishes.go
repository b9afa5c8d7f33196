package command

import (
	"context"
	"sort"
	"strings"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

// PubSpec identifies one publish the way an operator writes it on the
// command line: "[storage:]prefix/distribution", or a bare "distribution"
// for the root ("." prefix) publish. The prefix may itself contain slashes;
// the distribution is everything after the last one.
type PubSpec struct {
	Storage      string
	Prefix       string
	Distribution string
}

// ParsePubSpec parses a publish spec string.
func ParsePubSpec(s string) (PubSpec, error) {
	spec := PubSpec{Prefix: "."}
	rest := s
	if idx := strings.LastIndexByte(rest, '/'); idx >= 0 {
		prefix := rest[:idx]
		rest = rest[idx+1:]
		if prefix == "" || rest == "" {
			return PubSpec{}, &aptlyerr.ParseError{
				Kind: "publish spec", Input: s,
				Msg: "expected \"[storage:]prefix/distribution\" or \"distribution\"",
			}
		}
		spec.Prefix = prefix
	}
	if rest == "" {
		return PubSpec{}, &aptlyerr.ParseError{
			Kind: "publish spec", Input: s,
			Msg: "distribution is empty",
		}
	}
	spec.Distribution = rest
	if storage, prefix, ok := strings.Cut(spec.Prefix, ":"); ok {
		spec.Storage = storage
		spec.Prefix = prefix
	}
	return spec, nil
}

// String prints the spec back in its "{fullPrefix}/{distribution}" form.
func (s PubSpec) String() string {
	p := aptlytypes.Publish{Storage: s.Storage, Prefix: s.Prefix}
	return p.FullPrefix() + "/" + s.Distribution
}

// parsePublishSources parses "name[=component]" source arguments.
func parsePublishSources(args []string) ([]aptlytypes.Source, error) {
	if len(args) == 0 {
		return nil, &aptlyerr.ConfigurationError{Msg: "publish: at least one source is required"}
	}
	sources := make([]aptlytypes.Source, len(args))
	for i, s := range args {
		name, comp, _ := strings.Cut(s, "=")
		if name == "" {
			return nil, &aptlyerr.ParseError{
				Kind: "publish source", Input: s,
				Msg: "source name is empty, expected \"name[=component]\"",
			}
		}
		sources[i] = aptlytypes.Source{Name: name, Component: comp}
	}
	return sources, nil
}

// PublishList lists every publish on the server, sorted by full prefix then
// distribution.
func PublishList(ctx context.Context, client *aptlyclient.Client) ([]aptlytypes.Publish, error) {
	publishes, err := client.PublishList(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(publishes, func(i, j int) bool {
		a, b := publishes[i], publishes[j]
		if a.FullPrefix() != b.FullPrefix() {
			return a.FullPrefix() < b.FullPrefix()
		}
		return a.Distribution < b.Distribution
	})
	return publishes, nil
}

// PublishOptions carries the optional flags of a publish create.
type PublishOptions struct {
	Architectures  []string
	Label          string
	Origin         string
	ForceOverwrite bool
}

// PublishCreate materializes a new publish at spec from "name[=component]"
// source arguments. The signing configuration is resolved by the client
// from the spec's full prefix and distribution.
func PublishCreate(ctx context.Context, client *aptlyclient.Client, spec PubSpec, sourceKind string, sourceArgs []string, opts PublishOptions) (aptlytypes.Publish, error) {
	if sourceKind != "local" && sourceKind != "snapshot" {
		return aptlytypes.Publish{}, &aptlyerr.ConfigurationError{
			Msg: "publish: source kind must be \"local\" or \"snapshot\", got \"" + sourceKind + "\"",
		}
	}
	sources, err := parsePublishSources(sourceArgs)
	if err != nil {
		return aptlytypes.Publish{}, err
	}
	return client.PublishCreate(ctx, aptlyclient.PublishCreateParams{
		SourceKind:     sourceKind,
		Sources:        sources,
		Storage:        spec.Storage,
		Prefix:         spec.Prefix,
		Distribution:   spec.Distribution,
		Architectures:  opts.Architectures,
		Label:          opts.Label,
		Origin:         opts.Origin,
		ForceOverwrite: opts.ForceOverwrite,
	})
}

// PublishUpdate refreshes the publish at spec to its sources' current
// contents, re-signing it with the configuration resolved for the spec.
func PublishUpdate(ctx context.Context, client *aptlyclient.Client, spec PubSpec, forceOverwrite bool) (aptlytypes.Publish, error) {
	return client.PublishUpdate(ctx, spec.Storage, spec.Prefix, spec.Distribution, aptlyclient.PublishUpdateParams{
		ForceOverwrite: forceOverwrite,
	})
}

// PublishDrop removes the publish at spec.
func PublishDrop(ctx context.Context, client *aptlyclient.Client, spec PubSpec, force bool) error {
	return client.PublishDrop(ctx, spec.Storage, spec.Prefix, spec.Distribution, force)
}
