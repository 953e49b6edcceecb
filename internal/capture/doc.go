// Package capture owns the one-capture-at-a-time lifecycle between the
// camera and the analysis backend. A small state machine arbitrates between
// barcode-decode and manual-still triggers and enforces the single-flight
// rule: at most one analysis request is ever outstanding, and triggers that
// arrive mid-analysis are dropped rather than queued.
package capture
