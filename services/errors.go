package services

import "errors"

// Failure taxonomy for the insight queries. Statistical queries are never
// defaulted: a failure is surfaced rather than reported as 0%.
var (
	// ErrInvalidRange: from is after to, or the span exceeds MaxRangeDays.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidConfiguration: non-positive bucket width, or a symptom
	// window outside the supported band.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInsufficientData: zero qualifying meals, so no baseline exists.
	// Distinct from a feature legitimately matching zero meals.
	ErrInsufficientData = errors.New("not enough data")

	// ErrUpstreamLoad: the event store or category tree could not be
	// read. Not retried here; retries are the store's concern.
	ErrUpstreamLoad = errors.New("upstream load failure")
)
