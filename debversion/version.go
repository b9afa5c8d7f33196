package debversion

import (
	"strconv"
	"strings"

	pdebversion "pault.ag/go/debian/version"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
)

// Version is a parsed Debian package version: epoch:upstream-revision.
type Version struct {
	Epoch    int
	Upstream string
	Revision string
	original string
}

const upstreamExtra = ".+~-:"
const revisionExtra = ".+~"

// Parse parses s into a Version per Debian policy. Epoch defaults to 0 when
// no ':' is present; revision defaults to "0" when no '-' is present.
func Parse(s string) (Version, error) {
	for i, r := range s {
		if r > 127 {
			return Version{}, &aptlyerr.ParseError{
				Kind: "version", Input: s,
				Msg: "non-ASCII character at index " + strconv.Itoa(i),
			}
		}
	}

	rest := s
	epoch := 0
	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		epochStr := rest[:idx]
		n, err := strconv.Atoi(epochStr)
		if err != nil || n < 0 {
			return Version{}, &aptlyerr.ParseError{
				Kind: "version", Input: s,
				Msg: "epoch must be a non-negative decimal integer",
			}
		}
		epoch = n
		rest = rest[idx+1:]
	}

	upstream := rest
	revision := "0"
	if idx := strings.LastIndexByte(rest, '-'); idx >= 0 {
		upstream = rest[:idx]
		revision = rest[idx+1:]
		if revision == "" {
			return Version{}, &aptlyerr.ParseError{
				Kind: "version", Input: s,
				Msg: "revision is empty",
			}
		}
	}

	if upstream == "" {
		return Version{}, &aptlyerr.ParseError{
			Kind: "version", Input: s,
			Msg: "upstream version is empty",
		}
	}
	if upstream[0] < '0' || upstream[0] > '9' {
		return Version{}, &aptlyerr.ParseError{
			Kind: "version", Input: s,
			Msg: "upstream version must begin with a decimal digit",
		}
	}
	if idx, r, ok := firstIllegal(upstream, upstreamExtra); !ok {
		return Version{}, &aptlyerr.ParseError{
			Kind: "version", Input: s,
			Msg: "illegal character " + strconv.QuoteRune(r) + " in upstream version at index " + strconv.Itoa(idx),
		}
	}
	if idx, r, ok := firstIllegal(revision, revisionExtra); !ok {
		return Version{}, &aptlyerr.ParseError{
			Kind: "version", Input: s,
			Msg: "illegal character " + strconv.QuoteRune(r) + " in revision at index " + strconv.Itoa(idx),
		}
	}

	return Version{Epoch: epoch, Upstream: upstream, Revision: revision, original: s}, nil
}

func firstIllegal(s, extra string) (int, rune, bool) {
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			continue
		}
		if strings.ContainsRune(extra, r) {
			continue
		}
		return i, r, false
	}
	return 0, 0, true
}

// String returns the original input string Parse was called with.
func (v Version) String() string {
	return v.original
}

// Canonical returns the normalized "{epoch}:{upstream}-{revision}" form
// with defaulted zeros, as used for display/debugging (not for hashing;
// see CanonicalKey).
func (v Version) Canonical() string {
	return strconv.Itoa(v.Epoch) + ":" + v.Upstream + "-" + v.Revision
}

// CanonicalKey returns a string suitable as a map/hash key such that two
// versions are equal (per Compare) iff their CanonicalKey values are equal.
// Digit runs are canonicalized to their integer value (stripping leading
// zeros) so that e.g. "1.0" and "1.00", which compare equal, produce the
// same key.
func (v Version) CanonicalKey() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.Epoch))
	b.WriteByte(':')
	for _, r := range canonicalRuns(v.Upstream) {
		b.WriteString(r)
		b.WriteByte('\x00')
	}
	b.WriteByte('-')
	for _, r := range canonicalRuns(v.Revision) {
		b.WriteString(r)
		b.WriteByte('\x00')
	}
	return b.String()
}

// canonicalRuns splits s into alternating (non-digit, digit) run pairs,
// rendering each digit run as its canonical integer string (no leading
// zeros) and defaulting a missing trailing digit run to "0".
func canonicalRuns(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		start := i
		for i < len(s) && !isDigit(s[i]) {
			i++
		}
		out = append(out, s[start:i])

		start = i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		digits := strings.TrimLeft(s[start:i], "0")
		if digits == "" {
			digits = "0"
		}
		out = append(out, digits)
	}
	if len(out) == 0 {
		out = []string{"", "0"}
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than
// b, per Debian policy's version ordering. The comparison itself (epochs
// numerically, then upstream version and revision by alternating
// non-digit/digit run comparison, dpkg's verrevcmp) is delegated to
// pault.ag/go/debian/version.Compare, the pack's Debian version comparator
// (see paultag-go-archive's untangle.go), rather than reimplemented here.
func Compare(a, b Version) int {
	c := pdebversion.Compare(toExternal(a), toExternal(b))
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b are equal per Compare.
func Equal(a, b Version) bool { return Compare(a, b) == 0 }

// toExternal converts a Version, already validated by Parse against this
// client's stricter Debian-policy rules, into pault.ag/go/debian/version's
// own Version so its Compare can do the ordering.
func toExternal(v Version) pdebversion.Version {
	return pdebversion.Version{Epoch: uint(v.Epoch), Version: v.Upstream, Revision: v.Revision}
}
