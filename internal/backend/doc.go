// Package backend implements the HTTP client for the remote analysis
// service.
//
// The client owns no business logic: scan responses are handed back as raw
// decoded JSON so the nutrition normalizer makes every shape decision. It
// performs no retries; retry policy belongs to callers.
package backend
