// Package aptlytypes holds the wire-level data model shared by the
// repository client, the search engine, and the publish-update
// orchestrator: repositories, snapshots, sources, publishes, and the
// files-report returned by an add-packages call.
package aptlytypes
