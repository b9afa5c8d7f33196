package aptlypkg

import (
	"regexp"
	"strings"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/debversion"
)

var keyPattern = regexp.MustCompile(`^(\w*?)P(\w+) (\S+) (\S+) (\w+)$`)

// Key is a package's aptly identity: (prefix, arch, name, version,
// filesHash).
type Key struct {
	Prefix    string
	Arch      string
	Name      string
	Version   debversion.Version
	FilesHash string
}

// String prints the canonical aptly-key form:
// "{prefix}P{arch} {name} {version} {filesHash}".
func (k Key) String() string {
	return k.Prefix + "P" + k.Arch + " " + k.Name + " " + k.Version.String() + " " + k.FilesHash
}

// DirectRef prints the (ambiguous, hash-free) direct-reference form:
// "{name}_{version}_{arch}".
func (k Key) DirectRef() string {
	return k.Name + "_" + k.Version.String() + "_" + k.Arch
}

// FromKey parses an aptly key string.
func FromKey(s string) (Key, error) {
	m := keyPattern.FindStringSubmatch(s)
	if m == nil {
		return Key{}, &aptlyerr.ParseError{
			Kind: "aptly key", Input: s,
			Msg: "does not match the expected \"[prefix]Parch name version hash\" form",
		}
	}
	version, err := debversion.Parse(m[4])
	if err != nil {
		return Key{}, err
	}
	return Key{Prefix: m[1], Arch: m[2], Name: m[3], Version: version, FilesHash: m[5]}, nil
}

// FromDirectRef parses a direct reference "name_version_arch". Debian
// package names, versions and architectures never contain '_', so a plain
// three-way split is sufficient.
func FromDirectRef(s string) (name, version, arch string, err error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return "", "", "", &aptlyerr.ParseError{
			Kind: "direct reference", Input: s,
			Msg: "expected exactly two underscores separating name, version and arch",
		}
	}
	return parts[0], parts[1], parts[2], nil
}
