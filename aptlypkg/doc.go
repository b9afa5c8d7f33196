// Package aptlypkg represents a package by its aptly identity (prefix,
// architecture, name, version, and files-hash) and derives that identity
// plus its control metadata from a .deb file on disk.
package aptlypkg
