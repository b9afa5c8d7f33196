package aptlytypes

import (
	"strings"
	"time"
)

// Store is implemented by Repository and Snapshot, the two kinds of unit a
// search can target. Rather than dispatch by a runtime type check, callers
// hold a Store and ask it for its name and the API path segment used to
// search it.
type Store interface {
	StoreName() string
	searchSegment() string
}

// Repository is a local repository: (name, comment, default distribution,
// default component).
type Repository struct {
	Name                string `json:"Name"`
	Comment             string `json:"Comment,omitempty"`
	DefaultDistribution string `json:"DefaultDistribution,omitempty"`
	DefaultComponent    string `json:"DefaultComponent,omitempty"`
}

func (r Repository) StoreName() string     { return r.Name }
func (r Repository) searchSegment() string { return "repos" }

// Snapshot is a named, immutable set of packages: (name, description,
// creation timestamp).
type Snapshot struct {
	Name        string    `json:"Name"`
	Description string    `json:"Description,omitempty"`
	CreatedAt   time.Time `json:"CreatedAt,omitempty"`
}

func (s Snapshot) StoreName() string     { return s.Name }
func (s Snapshot) searchSegment() string { return "snapshots" }

// SearchSegment exposes the store's API path segment ("repos" or
// "snapshots") to packages outside aptlytypes without re-exporting the
// unexported interface method.
func SearchSegment(s Store) string { return s.searchSegment() }

// Source is one element referenced by a publish: a store name and an
// optional component.
type Source struct {
	Name      string `json:"Name"`
	Component string `json:"Component,omitempty"`
}

// Publish is a signed, materialized view of one or more local repositories
// or snapshots at a (storage, prefix, distribution) triple.
type Publish struct {
	SourceKind           string   `json:"SourceKind"`
	Sources              []Source `json:"Sources"`
	Storage              string   `json:"Storage,omitempty"`
	Prefix               string   `json:"Prefix,omitempty"`
	Distribution         string   `json:"Distribution,omitempty"`
	Architectures        []string `json:"Architectures,omitempty"`
	Label                string   `json:"Label,omitempty"`
	Origin               string   `json:"Origin,omitempty"`
	NotAutomatic         string   `json:"NotAutomatic,omitempty"`
	ButAutomaticUpgrades string   `json:"ButAutomaticUpgrades,omitempty"`
	AcquireByHash        bool     `json:"AcquireByHash,omitempty"`
}

// FullPrefix returns "storage:prefix" when Storage is set, else just
// Prefix.
func (p Publish) FullPrefix() string {
	if p.Storage != "" {
		return p.Storage + ":" + p.Prefix
	}
	return p.Prefix
}

// FullPrefixEscaped returns the URL-path-escaped form of FullPrefix.
func (p Publish) FullPrefixEscaped() string { return EscapePrefix(p.FullPrefix()) }

// HasSource reports whether any of p's sources names one of names.
func (p Publish) HasSource(names map[string]bool) bool {
	for _, s := range p.Sources {
		if names[s.Name] {
			return true
		}
	}
	return false
}

// EscapePrefix implements the publish-prefix URL escaping rule. The whole
// string "." (the root prefix) maps to ":." and nothing else; any other
// prefix only has '_' doubled, then '/' turned into '_'; embedded dots are
// left alone. Order matters for the general case: '_' must be doubled
// before '/' introduces fresh single underscores, or those fresh
// underscores would themselves be doubled.
func EscapePrefix(s string) string {
	if s == "." {
		return ":."
	}
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// FilesReport is returned by the server on an add-packages operation.
type FilesReport struct {
	Failed   []string `json:"FailedFiles"`
	Added    []string `json:"-"`
	Removed  []string `json:"-"`
	Warnings []string `json:"-"`
}
