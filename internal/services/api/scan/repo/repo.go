// Package repo provides scan storage: verdict caches in Postgres, the
// append-only event log in ClickHouse
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hashvault/internal/modkit/repokit"
	perr "hashvault/internal/platform/errors"
	"hashvault/internal/platform/store"
	"hashvault/internal/services/api/scan/domain"
)

// CleanHash is a cached clean verdict with its freshness timestamp
type CleanHash struct {
	Hash      string
	CreatedAt time.Time
}

// MaliciousURL is a cached malicious url verdict
type MaliciousURL struct {
	URL         string
	Hash        string
	ThreatLevel string
	Detail      string
}

// Repo defines scan storage operations
type Repo interface {
	// clean_hashes cache
	GetCleanHash(ctx context.Context, hash string) (CleanHash, error)
	UpsertCleanHash(ctx context.Context, hash string) error

	// malicious_urls cache
	GetMaliciousURL(ctx context.Context, url string) (MaliciousURL, error)
	InsertMaliciousURL(ctx context.Context, rec MaliciousURL) error

	// scan_history event log
	RecordScan(ctx context.Context, rec domain.Record) error
	History(ctx context.Context, offset, limit int) ([]domain.Record, error)
	CountScans(ctx context.Context) (int, error)
}

// NewHybrid constructs a scan storage binder over PG and CH
func NewHybrid(ch store.Clickhouse) repokit.Binder[Repo] { return &hybridBinder{ch: ch} }

type hybridBinder struct{ ch store.Clickhouse }

// Bind binds a Queryer to produce a Repo
func (b *hybridBinder) Bind(q repokit.Queryer) Repo { return &hybridStore{pg: q, ch: b.ch} }

type hybridStore struct {
	pg repokit.Queryer
	ch store.Clickhouse
}

var scanColumns = []string{
	"type", "subject", "hash", "malicious", "detail",
	"threat_level", "added_to_database", "degraded", "scanned_at",
}

// GetCleanHash returns the cached clean verdict for a hash
func (s *hybridStore) GetCleanHash(ctx context.Context, hash string) (CleanHash, error) {
	const q = `select hash, created_at from clean_hashes where hash = $1`
	var out CleanHash
	if err := s.pg.QueryRow(ctx, q, hash).Scan(&out.Hash, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CleanHash{}, perr.NotFoundf("clean hash not found")
		}
		return CleanHash{}, perr.FromPostgres(err, "get clean hash")
	}
	return out, nil
}

// UpsertCleanHash refreshes the clean verdict timestamp for a hash
func (s *hybridStore) UpsertCleanHash(ctx context.Context, hash string) error {
	const q = `
		insert into clean_hashes (id, hash, created_at)
		values ($1, $2, now())
		on conflict (hash) do update set created_at = now()
	`
	if _, err := s.pg.Exec(ctx, q, uuid.NewString(), hash); err != nil {
		return perr.FromPostgres(err, "upsert clean hash")
	}
	return nil
}

// GetMaliciousURL returns the cached verdict for a url
func (s *hybridStore) GetMaliciousURL(ctx context.Context, url string) (MaliciousURL, error) {
	const q = `select url, hash, threat_level, detail from malicious_urls where url = $1`
	var out MaliciousURL
	if err := s.pg.QueryRow(ctx, q, url).Scan(&out.URL, &out.Hash, &out.ThreatLevel, &out.Detail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MaliciousURL{}, perr.NotFoundf("url not found")
		}
		return MaliciousURL{}, perr.FromPostgres(err, "get malicious url")
	}
	return out, nil
}

// InsertMaliciousURL stores a malicious url verdict; duplicates are not an error
func (s *hybridStore) InsertMaliciousURL(ctx context.Context, rec MaliciousURL) error {
	const q = `
		insert into malicious_urls (id, url, hash, threat_level, detail)
		values ($1, $2, $3, $4, $5)
		on conflict (url) do nothing
	`
	if _, err := s.pg.Exec(ctx, q, uuid.NewString(), rec.URL, rec.Hash, rec.ThreatLevel, rec.Detail); err != nil {
		return perr.FromPostgres(err, "insert malicious url")
	}
	return nil
}

// RecordScan appends one scan event to the ClickHouse log
func (s *hybridStore) RecordScan(ctx context.Context, rec domain.Record) error {
	row := []any{
		rec.Type, rec.Subject, rec.Hash, rec.Malicious, rec.Detail,
		rec.ThreatLevel, rec.AddedToDatabase, rec.Degraded, rec.ScannedAt,
	}
	if err := s.ch.Insert(ctx, "scan_history", scanColumns, [][]any{row}); err != nil {
		return perr.DBf("record scan: %v", err)
	}
	return nil
}

// History returns one page of scan events, newest first
func (s *hybridStore) History(ctx context.Context, offset, limit int) ([]domain.Record, error) {
	const q = `
		SELECT type, subject, hash, malicious, detail,
		       threat_level, added_to_database, degraded, scanned_at
		FROM scan_history
		ORDER BY scanned_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.ch.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, perr.DBf("scan history: %v", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		if err := rows.Scan(
			&r.Type, &r.Subject, &r.Hash, &r.Malicious, &r.Detail,
			&r.ThreatLevel, &r.AddedToDatabase, &r.Degraded, &r.ScannedAt,
		); err != nil {
			return nil, perr.DBf("scan history scan: %v", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.DBf("scan history rows: %v", err)
	}
	return out, nil
}

// CountScans returns the total number of recorded scan events
func (s *hybridStore) CountScans(ctx context.Context) (int, error) {
	rows, err := s.ch.Query(ctx, `SELECT count() FROM scan_history`)
	if err != nil {
		return 0, perr.DBf("count scans: %v", err)
	}
	defer rows.Close()

	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, perr.DBf("count scans scan: %v", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, perr.DBf("count scans rows: %v", err)
	}
	return int(n), nil
}
