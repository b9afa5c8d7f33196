// Package command implements the high-level operations a CLI binary
// composes from the client engine: put, copy, remove, search and rotate.
// Each one sequences the typed client calls, applies the cleanup and
// partial-failure rules, and refreshes dependent publishes after a
// mutation.
package command
