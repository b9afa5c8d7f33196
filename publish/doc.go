// Package publish finds every local-repository-sourced publish that is
// materialized from a given set of local repositories and refreshes it to
// match their current contents. Snapshot-sourced publishes are not selected.
package publish
