// Package debversion parses and totally orders Debian package version
// strings per Debian policy §5.6.12.
//
// # Design Philosophy
//
// A Version is a pure value: parsing has no I/O and comparison is
// deterministic. Two versions that compare equal are guaranteed to hash
// equally even when their textual forms differ (e.g. "1.2" and "1.2-0", or
// "1.0" and "1.00"), because hashing uses a canonicalized run tuple rather
// than the original string.
//
// Parsing and its error enumeration are this client's own, to keep the
// precise per-character diagnostics callers depend on; the actual version
// ordering is delegated to pault.ag/go/debian/version.Compare.
package debversion
