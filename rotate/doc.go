// Package rotate implements the rotation policy: given a heterogeneous list
// of items, bucket them by a string key and keep either the newest N or
// all-but-newest-N items of each bucket.
package rotate
