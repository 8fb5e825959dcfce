// Package repo provides postgres access for the hash blocklist
package repo

import (
	"context"
	"errors"
	"time"

	"hashvault/internal/modkit/repokit"
	perr "hashvault/internal/platform/errors"
	ingestdom "hashvault/internal/services/ingest/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repo is the persistence surface for virus_hashes
type Repo interface {
	ExistsBatch(ctx context.Context, hashes []string) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, hashes []string) (ingestdom.BulkResult, error)

	Count(ctx context.Context) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	Recent(ctx context.Context, limit int) ([]Row, error)
	List(ctx context.Context, offset, limit int) ([]Row, error)
	Search(ctx context.Context, term string, limit int) ([]Row, error)
	GetByHash(ctx context.Context, hash string) (Row, error)
	Insert(ctx context.Context, hash string) (Row, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DailyCounts(ctx context.Context, days int) ([]DailyRow, error)
}

// Row is one virus_hashes record
type Row struct {
	ID      string
	Hash    string
	AddedAt time.Time
}

// DailyRow is one day bucket of inserts
type DailyRow struct {
	Day   string
	Count int
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) ExistsBatch(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	const sql = `
select hash
from virus_hashes
where hash = any($1)
`
	rows, err := r.q.Query(ctx, sql, hashes)
	if err != nil {
		return nil, perr.FromPostgres(err, "exists batch failed")
	}
	defer rows.Close()
	out := make(map[string]struct{}, len(hashes))
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		out[h] = struct{}{}
	}
	return out, rows.Err()
}

// InsertBatch reports conflicts per key instead of failing the batch;
// on conflict do nothing + returning makes the database do the bookkeeping
func (r *queries) InsertBatch(ctx context.Context, hashes []string) (ingestdom.BulkResult, error) {
	const sql = `
insert into virus_hashes (id, hash)
select gen_random_uuid(), h
from unnest($1::text[]) as t(h)
on conflict (hash) do nothing
returning hash
`
	rows, err := r.q.Query(ctx, sql, hashes)
	if err != nil {
		return ingestdom.BulkResult{}, perr.FromPostgres(err, "insert batch failed")
	}
	defer rows.Close()

	inserted := make(map[string]struct{}, len(hashes))
	var res ingestdom.BulkResult
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return ingestdom.BulkResult{}, err
		}
		inserted[h] = struct{}{}
		res.Inserted = append(res.Inserted, h)
	}
	if err := rows.Err(); err != nil {
		return ingestdom.BulkResult{}, err
	}
	for _, h := range hashes {
		if _, ok := inserted[h]; !ok {
			res.Conflicts = append(res.Conflicts, h)
		}
	}
	return res, nil
}

func (r *queries) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `select count(*) from virus_hashes`).Scan(&n)
	if err != nil {
		return 0, perr.FromPostgres(err, "count failed")
	}
	return n, nil
}

func (r *queries) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `select count(*) from virus_hashes where added_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, perr.FromPostgres(err, "count since failed")
	}
	return n, nil
}

func (r *queries) Recent(ctx context.Context, limit int) ([]Row, error) {
	const sql = `
select id, hash, added_at
from virus_hashes
order by added_at desc
limit $1
`
	return r.scanRows(ctx, sql, limit)
}

func (r *queries) List(ctx context.Context, offset, limit int) ([]Row, error) {
	const sql = `
select id, hash, added_at
from virus_hashes
order by added_at desc
offset $1 limit $2
`
	return r.scanRows(ctx, sql, offset, limit)
}

func (r *queries) Search(ctx context.Context, term string, limit int) ([]Row, error) {
	const sql = `
select id, hash, added_at
from virus_hashes
where hash ilike '%' || $1 || '%'
order by added_at desc
limit $2
`
	return r.scanRows(ctx, sql, term, limit)
}

func (r *queries) GetByHash(ctx context.Context, hash string) (Row, error) {
	const sql = `
select id, hash, added_at
from virus_hashes
where hash = $1
`
	var row Row
	err := r.q.QueryRow(ctx, sql, hash).Scan(&row.ID, &row.Hash, &row.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Row{}, perr.NotFoundf("hash not found")
		}
		return Row{}, perr.FromPostgres(err, "get by hash failed")
	}
	return row, nil
}

func (r *queries) Insert(ctx context.Context, hash string) (Row, error) {
	const sql = `
insert into virus_hashes (id, hash)
values ($1, $2)
returning id, hash, added_at
`
	var row Row
	err := r.q.QueryRow(ctx, sql, uuid.NewString(), hash).Scan(&row.ID, &row.Hash, &row.AddedAt)
	if err != nil {
		return Row{}, perr.AttachFieldFromPg(perr.FromPostgres(err, "insert hash failed"))
	}
	return row, nil
}

func (r *queries) DeleteByID(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `delete from virus_hashes where id = $1`, id)
	if err != nil {
		return false, perr.FromPostgres(err, "delete failed")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) DailyCounts(ctx context.Context, days int) ([]DailyRow, error) {
	const sql = `
select to_char(added_at::date, 'YYYY-MM-DD') as day, count(*)::int
from virus_hashes
where added_at >= current_date - make_interval(days => $1 - 1)
group by added_at::date
order by day asc
`
	rows, err := r.q.Query(ctx, sql, days)
	if err != nil {
		return nil, perr.FromPostgres(err, "daily counts failed")
	}
	defer rows.Close()
	var out []DailyRow
	for rows.Next() {
		var d DailyRow
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *queries) scanRows(ctx context.Context, sql string, args ...any) ([]Row, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "query failed")
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.Hash, &row.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
