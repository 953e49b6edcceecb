// Package foodlog runs the confirm-log flow: the remote log write, the
// best-effort local image save, and the reconciliation write that keys both
// to the newest remote history timestamp.
package foodlog
