// Package repo provides auth storage over Postgres
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hashvault/internal/modkit/repokit"
	perr "hashvault/internal/platform/errors"
)

// AdminRow is a stored operator account
type AdminRow struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SessionRow is a stored bearer token
type SessionRow struct {
	Token     string
	AdminID   string
	ExpiresAt time.Time
}

// Repo defines auth storage operations
type Repo interface {
	GetAdminByUsername(ctx context.Context, username string) (AdminRow, error)
	GetAdminByID(ctx context.Context, id string) (AdminRow, error)
	InsertAdmin(ctx context.Context, id, username, passwordHash string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	CountAdmins(ctx context.Context) (int, error)

	InsertSession(ctx context.Context, s SessionRow) error
	GetSession(ctx context.Context, token string) (SessionRow, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// NewPG constructs a Postgres binder for the auth repo
func NewPG() repokit.Binder[Repo] { return pgBinder{} }

type pgBinder struct{}

// Bind binds a Queryer to produce a Repo
func (pgBinder) Bind(q repokit.Queryer) Repo { return &pgRepo{q: q} }

type pgRepo struct {
	q repokit.Queryer
}

// GetAdminByUsername fetches an account by its unique username
func (r *pgRepo) GetAdminByUsername(ctx context.Context, username string) (AdminRow, error) {
	const q = `select id, username, password_hash, created_at from admins where username = $1`
	var out AdminRow
	if err := r.q.QueryRow(ctx, q, username).Scan(&out.ID, &out.Username, &out.PasswordHash, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdminRow{}, perr.NotFoundf("admin not found")
		}
		return AdminRow{}, perr.FromPostgres(err, "get admin by username")
	}
	return out, nil
}

// GetAdminByID fetches an account by id
func (r *pgRepo) GetAdminByID(ctx context.Context, id string) (AdminRow, error) {
	const q = `select id, username, password_hash, created_at from admins where id = $1`
	var out AdminRow
	if err := r.q.QueryRow(ctx, q, id).Scan(&out.ID, &out.Username, &out.PasswordHash, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdminRow{}, perr.NotFoundf("admin not found")
		}
		return AdminRow{}, perr.FromPostgres(err, "get admin by id")
	}
	return out, nil
}

// InsertAdmin creates an account
func (r *pgRepo) InsertAdmin(ctx context.Context, id, username, passwordHash string) error {
	const q = `insert into admins (id, username, password_hash) values ($1, $2, $3)`
	if _, err := r.q.Exec(ctx, q, id, username, passwordHash); err != nil {
		return perr.AttachFieldFromPg(perr.FromPostgres(err, "insert admin"))
	}
	return nil
}

// UpdatePasswordHash replaces the stored credential
func (r *pgRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	const q = `update admins set password_hash = $2 where id = $1`
	tag, err := r.q.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return perr.FromPostgres(err, "update password hash")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("admin not found")
	}
	return nil
}

// CountAdmins returns the number of accounts
func (r *pgRepo) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `select count(*) from admins`).Scan(&n); err != nil {
		return 0, perr.FromPostgres(err, "count admins")
	}
	return n, nil
}

// InsertSession stores an issued token
func (r *pgRepo) InsertSession(ctx context.Context, s SessionRow) error {
	const q = `insert into sessions (token, admin_id, expires_at) values ($1, $2, $3)`
	if _, err := r.q.Exec(ctx, q, s.Token, s.AdminID, s.ExpiresAt); err != nil {
		return perr.FromPostgres(err, "insert session")
	}
	return nil
}

// GetSession fetches a stored token
func (r *pgRepo) GetSession(ctx context.Context, token string) (SessionRow, error) {
	const q = `select token, admin_id, expires_at from sessions where token = $1`
	var out SessionRow
	if err := r.q.QueryRow(ctx, q, token).Scan(&out.Token, &out.AdminID, &out.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SessionRow{}, perr.NotFoundf("session not found")
		}
		return SessionRow{}, perr.FromPostgres(err, "get session")
	}
	return out, nil
}

// DeleteSession revokes a token
func (r *pgRepo) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.q.Exec(ctx, `delete from sessions where token = $1`, token); err != nil {
		return perr.FromPostgres(err, "delete session")
	}
	return nil
}

// DeleteExpiredSessions sweeps tokens past their expiry
func (r *pgRepo) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := r.q.Exec(ctx, `delete from sessions where expires_at < now()`)
	if err != nil {
		return 0, perr.FromPostgres(err, "delete expired sessions")
	}
	return int(tag.RowsAffected()), nil
}
