// Package reconcile persists the join between remote history entries and
// local captures. The backend's food log keeps no reference to the device
// that produced an entry, so image ids and swap suggestions are stored here,
// keyed by the remote entry's timestamp, and re-attached at render time.
package reconcile
