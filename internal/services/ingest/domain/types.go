// Package domain holds ingest pipeline types and ports
package domain

import "time"

// Defaults for pipeline pacing and batching
const (
	DefaultBatchSize     = 1000
	DefaultPaceThreshold = 5000
	DefaultPaceDelay     = 100 * time.Millisecond
)

// Options tunes the pipeline. Zero values fall back to defaults
type Options struct {
	// BatchSize is the max tokens handed to the store per round trip
	BatchSize int
	// PaceThreshold is the total token count above which batches are paced
	PaceThreshold int
	// PaceDelay is the fixed sleep between batches when pacing is on
	PaceDelay time.Duration
}

// Normalize fills unset fields with defaults
func (o Options) Normalize() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.PaceThreshold <= 0 {
		o.PaceThreshold = DefaultPaceThreshold
	}
	if o.PaceDelay <= 0 {
		o.PaceDelay = DefaultPaceDelay
	}
	return o
}

// ProgressEvent is emitted after every processed batch
type ProgressEvent struct {
	Processed      int `json:"processedCount"`
	Total          int `json:"totalCount"`
	CurrentBatch   int `json:"currentBatchIndex"`
	TotalBatches   int `json:"totalBatches"`
	NewCount       int `json:"newCount"`
	DuplicateCount int `json:"duplicateCount"`
	ErrorCount     int `json:"errorCount"`
	Percent        int `json:"percentComplete"`
}

// Summary is the terminal frame of a run
type Summary struct {
	Completed      bool   `json:"completed"`
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Total          int    `json:"totalCount"`
	NewCount       int    `json:"newCount"`
	DuplicateCount int    `json:"duplicateCount"`
	ErrorCount     int    `json:"errorCount"`
	Error          string `json:"error,omitempty"`
}
