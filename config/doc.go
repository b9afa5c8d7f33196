// Package config loads the client's configuration: the server URL, the
// default and per-publish signing configuration, timeouts, and worker-pool
// size. It is layered file -> selected profile section -> command-line
// overrides, last one wins.
package config
