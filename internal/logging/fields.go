package logging

// Standardized attribute keys shared across components so log consumers can
// filter reliably.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	FieldCaptureID = "capture_id"
)
