// Package history re-attaches local captures to the remote food log on
// read. The remote log is authoritative but image-less; the join runs
// through the reconcile index by timestamp and tolerates misses.
package history
