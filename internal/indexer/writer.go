package indexer

import "context"

// ClusterInfo identifies the store reached by CheckConnection.
type ClusterInfo struct {
	Name        string
	ClusterName string
	Version     string
}

// Cause is the nested reason of a document failure.
type Cause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ItemError is the store's error for one operation.
type ItemError struct {
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	CausedBy *Cause `json:"caused_by,omitempty"`
}

// ItemResult is the outcome of one create operation. Results are returned in
// submission order.
type ItemResult struct {
	ID     string
	Status int
	Error  *ItemError
}

// Failed reports whether the operation was rejected.
func (r ItemResult) Failed() bool { return r.Error != nil }

// BulkWriter submits create-only batches to a document store.
type BulkWriter interface {
	// CheckConnection verifies the store is reachable.
	CheckConnection(ctx context.Context) (ClusterInfo, error)
	// Bulk creates every document in index as one grouped request. An error
	// means the request as a whole failed; per-document failures are reported
	// in the results.
	Bulk(ctx context.Context, index string, docs [][]byte) ([]ItemResult, error)
}
