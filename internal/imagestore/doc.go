// Package imagestore persists captured food images locally.
//
// The store is append-only: images are written once at log time, read back
// during history hydration, and removed only by the age-based purge. Ids
// are generated locally and carry no relationship to the remote history
// log; the reconcile package bridges the two.
package imagestore
