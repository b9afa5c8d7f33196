package command

import (
	"strings"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/aptlypkg"
	"github.com/cyril-s/aptly-ctl-go/debversion"
)

// ref is one "[repo/]key-or-direct-ref" argument as accepted by copy and
// remove: an optional repo
// name, then either a full aptly key (has a files-hash) or a bare direct
// reference (name_version_arch, no hash, ambiguous until resolved against
// a repo).
type ref struct {
	Repo string
	Key  aptlypkg.Key
	// direct is true when Key was parsed from a hash-free direct reference
	// and still needs Key.FilesHash resolved via a search.
	direct bool
}

// parseRef splits "repo/reference" (or a bare "reference", if the command
// supplies a default repo name itself) and parses the reference half as
// either an aptly key or a direct reference.
func parseRef(s, defaultRepo string) (ref, error) {
	repo, rest, hasRepo := strings.Cut(s, "/")
	if !hasRepo {
		rest = repo
		repo = defaultRepo
	}
	if repo == "" {
		return ref{}, &aptlyerr.ParseError{
			Kind: "package reference", Input: s,
			Msg: "a repo name is required, either as \"repo/ref\" or via the command's own repo argument",
		}
	}

	if key, err := aptlypkg.FromKey(rest); err == nil {
		return ref{Repo: repo, Key: key}, nil
	}

	name, versionStr, arch, err := aptlypkg.FromDirectRef(rest)
	if err != nil {
		return ref{}, &aptlyerr.ParseError{
			Kind: "package reference", Input: s,
			Msg: "neither an aptly key nor a direct reference",
		}
	}
	version, err := debversion.Parse(versionStr)
	if err != nil {
		return ref{}, err
	}
	return ref{Repo: repo, Key: aptlypkg.Key{Arch: arch, Name: name, Version: version}, direct: true}, nil
}
