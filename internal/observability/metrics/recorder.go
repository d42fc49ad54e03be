// Package metrics provides the Prometheus collectors for mediaseed runs.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it rather than on a concrete collector so that tests
// can substitute a recording fake.
type Recorder interface {
	// RecordOperation records an operation with its outcome.
	// The operation parameter names what was performed (e.g. "record_generate", "bulk_batch").
	// The status parameter is the outcome (e.g. "wildlife", "success", "error").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	// The errorType parameter categorizes the error (e.g. "timezone", "transport").
	RecordError(operation, errorType string)
}
