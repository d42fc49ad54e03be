package metrics

// Operation names shared by recorders and their callers.
const (
	// OpGenerate is one record passing through the generation pipeline.
	OpGenerate = "record_generate"
	// OpBulkBatch is one bulk request against a tenant index.
	OpBulkBatch = "bulk_batch"
)

// Label values.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"

	ErrorTypeTransport = "transport"
	ErrorTypeDocument  = "document"
)

// Histogram bucket configuration constants.
const (
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001
	// BucketStart10ms is the starting bucket for 10ms histograms (10ms to ~40s range).
	BucketStart10ms = 0.01
	// BucketStart1KB is the starting bucket for 1KB histograms (1KB to ~1GB range).
	BucketStart1KB = 1024.0

	// BucketFactor2 is the common exponential growth factor for histogram buckets.
	BucketFactor2 = 2
	// BucketFactor4 spreads size buckets over a wider range.
	BucketFactor4 = 4

	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
)
