package errors

import (
	stderrs "errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		ColumnName:     col,
		ConstraintName: constraint,
	}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},    // unique violation
		{"23503", ErrorCodeInvalidArgument}, // fk violation -> invalid input
		{"23502", ErrorCodeValidation},      // not null
		{"23514", ErrorCodeValidation},      // check
		{"22001", ErrorCodeInvalidArgument}, // string truncation
		{"22P02", ErrorCodeInvalidArgument}, // invalid text representation
		{"57P03", ErrorCodeUnavailable},     // cannot connect now
		{"XXXXX", ErrorCodeDB},              // default branch
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code, "", ""))
		if !ok {
			t.Fatalf("expected ok for PgError code %s", c.code)
		}
		if got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, want %v", c.code, got, c.want)
		}
	}

	// Non-pg error path
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgres(t *testing.T) {
	// nil passthrough
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("FromPostgres(nil) should be nil")
	}

	err := FromPostgres(pg("23505", "", ""), "insert failed")
	if CodeOf(err) != ErrorCodeDuplicateKey {
		t.Fatalf("FromPostgres(23505) code = %v", CodeOf(err))
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("IsDuplicateKey should see through the wrap")
	}

	// non-pg error still wraps as DB
	err2 := FromPostgres(stderrs.New("boom"), "query failed")
	if CodeOf(err2) != ErrorCodeDB {
		t.Fatalf("FromPostgres(foreign) code = %v", CodeOf(err2))
	}
}

func TestAttachFieldFromPg(t *testing.T) {
	// column name wins
	err := AttachFieldFromPg(FromPostgres(pg("23502", "hash", ""), "insert failed"))
	if e, ok := As(err); !ok || e.Field() != "hash" {
		t.Fatalf("field from column = %q", e.Field())
	}

	// falls back to the constraint's last token
	err = AttachFieldFromPg(FromPostgres(pg("23505", "", "virus_hashes_hash_uidx"), "insert failed"))
	if e, ok := As(err); !ok || e.Field() != "uidx" {
		t.Fatalf("field from constraint = %q", e.Field())
	}

	// non-pg errors pass through untouched
	plain := stderrs.New("nope")
	if AttachFieldFromPg(plain) != plain {
		t.Fatalf("foreign error should pass through")
	}
}

func TestIsSQLState(t *testing.T) {
	wrapped := FromPostgres(pg("23505", "", ""), "x")
	if !IsSQLState(wrapped, "23505") {
		t.Fatalf("IsSQLState should unwrap to the PgError")
	}
	if IsSQLState(wrapped, "23503") {
		t.Fatalf("IsSQLState matched the wrong state")
	}
	if IsSQLState(stderrs.New("x"), "23505") {
		t.Fatalf("IsSQLState true for non-pg error")
	}
}
