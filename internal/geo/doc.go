// Package geo resolves approximate device coordinates for scan submissions.
// Location is advisory context for the analysis backend, so lookups never
// fail: a disabled or unreachable provider degrades to fixed fallback
// coordinates.
package geo
