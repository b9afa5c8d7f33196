// Package search runs package searches across many repositories or
// snapshots and many queries concurrently, bounding the number of
// in-flight HTTP requests with a worker pool.
package search
