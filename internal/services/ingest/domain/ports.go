package domain

import "context"

// BulkResult reports an insert batch outcome per key
// Conflicts are keys that already existed; no error-string sniffing involved
type BulkResult struct {
	Inserted  []string
	Conflicts []string
}

// HashStore is the persistence seam the pipeline writes through
type HashStore interface {
	// ExistsBatch returns the subset of hashes already present
	ExistsBatch(ctx context.Context, hashes []string) (map[string]struct{}, error)
	// InsertBatch inserts candidates, reporting conflicts individually
	InsertBatch(ctx context.Context, hashes []string) (BulkResult, error)
}

// Emitter receives progress frames; implementations must tolerate being
// called after a client went away
type Emitter func(ProgressEvent)
