// Package service runs the batched hash ingestion pipeline
package service

import (
	"context"
	"fmt"
	"time"

	"hashvault/internal/core/hashtoken"
	"hashvault/internal/platform/config"
	"hashvault/internal/platform/logger"
	"hashvault/internal/services/ingest/domain"
)

// Service defines the ingestion contract
type Service interface {
	// Run pushes tokens through the store in batches, emitting progress
	// after each batch, and returns the terminal summary
	Run(ctx context.Context, tokens []string, emit domain.Emitter) domain.Summary
}

// Svc implements the ingestion pipeline
type Svc struct {
	store domain.HashStore
	opts  domain.Options
	log   logger.Logger
	sleep func(time.Duration)
}

// New constructs an ingest service
func New(store domain.HashStore, opts domain.Options) *Svc {
	if store == nil {
		panic("ingest.Service requires a non nil HashStore")
	}
	return &Svc{
		store: store,
		opts:  opts.Normalize(),
		log:   *logger.Named("ingest"),
		sleep: time.Sleep,
	}
}

// OptionsFromConfig reads pipeline knobs from an INGEST_ prefixed config view
func OptionsFromConfig(cfg config.Conf) domain.Options {
	v := cfg.Prefix("INGEST_")
	return domain.Options{
		BatchSize:     v.MayInt("BATCH_SIZE", domain.DefaultBatchSize),
		PaceThreshold: v.MayInt("PACE_THRESHOLD", domain.DefaultPaceThreshold),
		PaceDelay:     v.MayDuration("PACE_DELAY", domain.DefaultPaceDelay),
	}
}

// Run processes tokens strictly in order, one batch at a time.
// A failed batch counts its candidates as errors and the run keeps going;
// the run itself never aborts once the first batch has started
func (s *Svc) Run(ctx context.Context, tokens []string, emit domain.Emitter) domain.Summary {
	if emit == nil {
		emit = func(domain.ProgressEvent) {}
	}

	total := len(tokens)
	if total == 0 {
		return domain.Summary{
			Completed: true,
			Success:   true,
			Message:   "no hashes found in input",
		}
	}

	batches := hashtoken.Partition(tokens, s.opts.BatchSize)
	pace := total > s.opts.PaceThreshold

	var processed, newCount, dupCount, errCount int

	for i, batch := range batches {
		bn, bd, be := s.runBatch(ctx, batch)
		newCount += bn
		dupCount += bd
		errCount += be
		processed += len(batch)

		emit(domain.ProgressEvent{
			Processed:      processed,
			Total:          total,
			CurrentBatch:   i + 1,
			TotalBatches:   len(batches),
			NewCount:       newCount,
			DuplicateCount: dupCount,
			ErrorCount:     errCount,
			Percent:        percent(processed, total),
		})

		if pace && i < len(batches)-1 {
			s.sleep(s.opts.PaceDelay)
		}
	}

	s.log.Info().
		Int("total", total).
		Int("new", newCount).
		Int("duplicates", dupCount).
		Int("errors", errCount).
		Msg("ingest run finished")

	return domain.Summary{
		Completed:      true,
		Success:        true,
		Message:        fmt.Sprintf("processed %d hashes", total),
		Total:          total,
		NewCount:       newCount,
		DuplicateCount: dupCount,
		ErrorCount:     errCount,
	}
}

// runBatch reconciles one batch and returns (new, duplicate, error) counts
func (s *Svc) runBatch(ctx context.Context, batch []string) (int, int, int) {
	existing, err := s.store.ExistsBatch(ctx, batch)
	if err != nil {
		s.log.Warn().Err(err).Int("batch_size", len(batch)).Msg("exists check failed, batch counted as errors")
		return 0, 0, len(batch)
	}

	candidates := make([]string, 0, len(batch))
	dup := 0
	for _, h := range batch {
		if _, ok := existing[h]; ok {
			dup++
			continue
		}
		candidates = append(candidates, h)
	}
	if len(candidates) == 0 {
		return 0, dup, 0
	}

	res, err := s.store.InsertBatch(ctx, candidates)
	if err != nil {
		s.log.Warn().Err(err).Int("batch_size", len(candidates)).Msg("insert failed, batch counted as errors")
		return 0, dup, len(candidates)
	}

	// rows that raced in between the exists check and the insert come back
	// as conflicts and are still duplicates, not errors
	return len(res.Inserted), dup + len(res.Conflicts), 0
}

func percent(processed, total int) int {
	if total == 0 {
		return 100
	}
	return int(float64(processed)/float64(total)*100 + 0.5)
}
