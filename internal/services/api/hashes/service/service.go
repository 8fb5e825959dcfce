// Package service contains the hash blocklist workflows
package service

import (
	"context"
	"strings"
	"time"

	"hashvault/internal/modkit/repokit"
	perr "hashvault/internal/platform/errors"
	"hashvault/internal/services/api/hashes/domain"
	"hashvault/internal/services/api/hashes/repo"
	ingestdom "hashvault/internal/services/ingest/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	searchMinChars = 3
	searchCap      = 50
)

// Service defines the hashes service contract
type Service interface {
	domain.ServicePort
	domain.StatsPort
	domain.BlocklistPort
}

// Svc implements the hashes service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
}

// New constructs a hashes service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("hashes.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("hashes.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

// List returns one page of records newest first with the pagination block
func (s *Svc) List(ctx context.Context, in domain.ListInput) (domain.ListResult, error) {
	page := in.Page
	if page < 1 {
		page = defaultPage
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	total, err := s.Repo.Count(ctx)
	if err != nil {
		return domain.ListResult{}, err
	}

	offset := (page - 1) * limit
	rows, err := s.Repo.List(ctx, offset, limit)
	if err != nil {
		return domain.ListResult{}, err
	}

	totalPages := (total + limit - 1) / limit
	end := offset + len(rows)

	return domain.ListResult{
		Hashes: records(rows),
		Pagination: domain.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalHashes: total,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
			Limit:       limit,
			StartIndex:  offset,
			EndIndex:    end,
		},
	}, nil
}

// Count returns the blocklist size
func (s *Svc) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

// CountSince counts records added at or after since
func (s *Svc) CountSince(ctx context.Context, since time.Time) (int, error) {
	return s.Repo.CountSince(ctx, since)
}

// Recent returns the newest records
func (s *Svc) Recent(ctx context.Context, limit int) ([]domain.HashRecord, error) {
	rows, err := s.Repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return records(rows), nil
}

// DailyCounts returns per-day insert counts for the last days days
func (s *Svc) DailyCounts(ctx context.Context, days int) ([]domain.DailyCount, error) {
	rows, err := s.Repo.DailyCounts(ctx, days)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DailyCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.DailyCount{Day: r.Day, Count: r.Count})
	}
	return out, nil
}

// Search finds records whose hash contains term, case insensitive
func (s *Svc) Search(ctx context.Context, term string) (domain.SearchResult, error) {
	term = strings.TrimSpace(term)
	if len(term) < searchMinChars {
		return domain.SearchResult{}, perr.InvalidArgf("search term must be at least %d characters", searchMinChars)
	}
	rows, err := s.Repo.Search(ctx, term, searchCap)
	if err != nil {
		return domain.SearchResult{}, err
	}
	return domain.SearchResult{
		Hashes:     records(rows),
		SearchTerm: term,
		TotalFound: len(rows),
	}, nil
}

// GetByHash returns the record for hash or not found
func (s *Svc) GetByHash(ctx context.Context, hash string) (domain.HashRecord, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return domain.HashRecord{}, perr.InvalidArgf("hash is required")
	}
	row, err := s.Repo.GetByHash(ctx, hash)
	if err != nil {
		return domain.HashRecord{}, err
	}
	return record(row), nil
}

// Create inserts a single record; a repeated hash is a client error
func (s *Svc) Create(ctx context.Context, in domain.CreateInput) (domain.HashRecord, error) {
	hash := strings.TrimSpace(in.Hash)
	if hash == "" {
		return domain.HashRecord{}, perr.InvalidArgf("hash is required")
	}
	row, err := s.Repo.Insert(ctx, hash)
	if err != nil {
		if perr.IsDuplicateKey(err) {
			return domain.HashRecord{}, perr.DuplicateKeyf("hash already exists")
		}
		return domain.HashRecord{}, err
	}
	return record(row), nil
}

// Delete removes a record by id
func (s *Svc) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return perr.InvalidArgf("id is required")
	}
	ok, err := s.Repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return perr.NotFoundf("hash not found")
	}
	return nil
}

// Known reports blocklist membership for the scan module
func (s *Svc) Known(ctx context.Context, hash string) (bool, error) {
	_, err := s.Repo.GetByHash(ctx, hash)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Add inserts hash if absent; added=false means it was already listed
func (s *Svc) Add(ctx context.Context, hash string) (bool, error) {
	_, err := s.Repo.Insert(ctx, hash)
	if err != nil {
		if perr.IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ExistsBatch exposes the repo's batch membership check, satisfying the
// ingest pipeline's HashStore seam
func (s *Svc) ExistsBatch(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	return s.Repo.ExistsBatch(ctx, hashes)
}

// InsertBatch exposes the repo's conflict-reporting bulk insert for ingest
func (s *Svc) InsertBatch(ctx context.Context, hashes []string) (ingestdom.BulkResult, error) {
	return s.Repo.InsertBatch(ctx, hashes)
}

func records(rows []repo.Row) []domain.HashRecord {
	out := make([]domain.HashRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, record(r))
	}
	return out
}

func record(r repo.Row) domain.HashRecord {
	return domain.HashRecord{ID: r.ID, Hash: r.Hash, AddedAt: r.AddedAt}
}
