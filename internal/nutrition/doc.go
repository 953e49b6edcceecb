// Package nutrition defines the canonical food record and the defensive
// normalization that produces it from raw analysis payloads.
//
// The backend's response shape has drifted over time: nutrition figures may
// sit under a top-level "nutrition" or "macros" object or nested inside
// "scan_result". Normalize absorbs every such variant, coercing values and
// substituting defaults so downstream code never sees a missing or
// wrong-typed field.
package nutrition
