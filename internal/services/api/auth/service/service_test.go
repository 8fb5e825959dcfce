package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	perr "hashvault/internal/platform/errors"
	"hashvault/internal/platform/logger"
	"hashvault/internal/services/api/auth/domain"
	"hashvault/internal/services/api/auth/repo"
)

type fakeRepo struct {
	admins   map[string]repo.AdminRow // keyed by username
	sessions map[string]repo.SessionRow
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		admins:   map[string]repo.AdminRow{},
		sessions: map[string]repo.SessionRow{},
	}
}

func (f *fakeRepo) GetAdminByUsername(_ context.Context, username string) (repo.AdminRow, error) {
	a, ok := f.admins[username]
	if !ok {
		return repo.AdminRow{}, perr.NotFoundf("admin not found")
	}
	return a, nil
}

func (f *fakeRepo) GetAdminByID(_ context.Context, id string) (repo.AdminRow, error) {
	for _, a := range f.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return repo.AdminRow{}, perr.NotFoundf("admin not found")
}

func (f *fakeRepo) InsertAdmin(_ context.Context, id, username, passwordHash string) error {
	if _, ok := f.admins[username]; ok {
		return perr.DuplicateKeyf("username taken")
	}
	f.admins[username] = repo.AdminRow{ID: id, Username: username, PasswordHash: passwordHash}
	return nil
}

func (f *fakeRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	for u, a := range f.admins {
		if a.ID == id {
			a.PasswordHash = passwordHash
			f.admins[u] = a
			return nil
		}
	}
	return perr.NotFoundf("admin not found")
}

func (f *fakeRepo) CountAdmins(context.Context) (int, error) { return len(f.admins), nil }

func (f *fakeRepo) InsertSession(_ context.Context, s repo.SessionRow) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeRepo) GetSession(_ context.Context, token string) (repo.SessionRow, error) {
	s, ok := f.sessions[token]
	if !ok {
		return repo.SessionRow{}, perr.NotFoundf("session not found")
	}
	return s, nil
}

func (f *fakeRepo) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeRepo) DeleteExpiredSessions(context.Context) (int, error) { return 0, nil }

func newTestSvc(r *fakeRepo) *Svc {
	return &Svc{Repo: r, log: *logger.Named("auth-test"), now: time.Now}
}

func seedAdmin(t *testing.T, r *fakeRepo, username, password string) repo.AdminRow {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	a := repo.AdminRow{ID: "admin-" + username, Username: username, PasswordHash: string(hash)}
	r.admins[username] = a
	return a
}

func TestLogin_IssuesSession(t *testing.T) {
	r := newFakeRepo()
	seedAdmin(t, r, "admin", "secret1")
	s := newTestSvc(r)

	out, err := s.Login(context.Background(), domain.LoginInput{Username: "admin", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if out.Token == "" || out.Username != "admin" {
		t.Fatalf("unexpected result: %+v", out)
	}
	sess, ok := r.sessions[out.Token]
	if !ok {
		t.Fatalf("session not stored")
	}
	if time.Until(sess.ExpiresAt) < 23*time.Hour {
		t.Fatalf("session expiry too short: %v", sess.ExpiresAt)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	r := newFakeRepo()
	seedAdmin(t, r, "admin", "secret1")
	s := newTestSvc(r)

	cases := []domain.LoginInput{
		{Username: "admin", Password: "wrong"},
		{Username: "nobody", Password: "secret1"},
	}
	for _, in := range cases {
		if _, err := s.Login(context.Background(), in); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			t.Fatalf("Login(%+v) = %v, want unauthorized", in, err)
		}
	}
	if len(r.sessions) != 0 {
		t.Fatalf("failed logins must not issue sessions")
	}
}

func TestParseToken_RoundTripAndExpiry(t *testing.T) {
	r := newFakeRepo()
	a := seedAdmin(t, r, "admin", "secret1")
	s := newTestSvc(r)

	out, err := s.Login(context.Background(), domain.LoginInput{Username: "admin", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	id, err := s.ParseToken(context.Background(), out.Token)
	if err != nil || id != a.ID {
		t.Fatalf("ParseToken = (%q, %v), want admin id", id, err)
	}

	// jump past the expiry
	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if _, err := s.ParseToken(context.Background(), out.Token); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("expired token should be unauthorized, got %v", err)
	}
	if _, ok := r.sessions[out.Token]; ok {
		t.Fatalf("expired session should be swept")
	}
}

func TestParseToken_UnknownToken(t *testing.T) {
	s := newTestSvc(newFakeRepo())
	if _, err := s.ParseToken(context.Background(), "nope"); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("unknown token should be unauthorized, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	r := newFakeRepo()
	seedAdmin(t, r, "admin", "secret1")
	s := newTestSvc(r)

	out, _ := s.Login(context.Background(), domain.LoginInput{Username: "admin", Password: "secret1"})
	if err := s.Logout(context.Background(), out.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := s.ParseToken(context.Background(), out.Token); err == nil {
		t.Fatalf("token should be dead after logout")
	}
}

func TestChangePassword_Validation(t *testing.T) {
	r := newFakeRepo()
	a := seedAdmin(t, r, "admin", "secret1")
	s := newTestSvc(r)

	cases := []struct {
		name string
		in   domain.ChangePasswordInput
		code perr.ErrorCode
	}{
		{"missing fields", domain.ChangePasswordInput{OldPassword: "secret1"}, perr.ErrorCodeInvalidArgument},
		{"mismatch", domain.ChangePasswordInput{OldPassword: "secret1", NewPassword: "abcdef", ConfirmPassword: "abcdeg"}, perr.ErrorCodeInvalidArgument},
		{"too short", domain.ChangePasswordInput{OldPassword: "secret1", NewPassword: "abc", ConfirmPassword: "abc"}, perr.ErrorCodeInvalidArgument},
		{"wrong old", domain.ChangePasswordInput{OldPassword: "nope", NewPassword: "abcdef", ConfirmPassword: "abcdef"}, perr.ErrorCodeUnauthorized},
	}
	for _, tc := range cases {
		if err := s.ChangePassword(context.Background(), a.ID, tc.in); !perr.IsCode(err, tc.code) {
			t.Fatalf("%s: got %v", tc.name, err)
		}
	}
}

func TestChangePassword_RehashesAndVerifies(t *testing.T) {
	r := newFakeRepo()
	a := seedAdmin(t, r, "admin", "secret1")
	s := newTestSvc(r)

	in := domain.ChangePasswordInput{OldPassword: "secret1", NewPassword: "brandnew", ConfirmPassword: "brandnew"}
	if err := s.ChangePassword(context.Background(), a.ID, in); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := s.Login(context.Background(), domain.LoginInput{Username: "admin", Password: "brandnew"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := s.Login(context.Background(), domain.LoginInput{Username: "admin", Password: "secret1"}); err == nil {
		t.Fatalf("old password should no longer work")
	}
}

func TestPasswordStatus_FlagsDefaultCredential(t *testing.T) {
	r := newFakeRepo()
	s := newTestSvc(r)

	if err := s.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultAdmin: %v", err)
	}
	a := r.admins["admin"]

	st, err := s.PasswordStatus(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("PasswordStatus: %v", err)
	}
	if !st.PasswordChangeRequired {
		t.Fatalf("default credential should require a change")
	}

	in := domain.ChangePasswordInput{OldPassword: "admin123", NewPassword: "brandnew", ConfirmPassword: "brandnew"}
	if err := s.ChangePassword(context.Background(), a.ID, in); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	st, err = s.PasswordStatus(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("PasswordStatus: %v", err)
	}
	if st.PasswordChangeRequired {
		t.Fatalf("changed credential should clear the flag")
	}
}

func TestEnsureDefaultAdmin_IdempotentAndNonClobbering(t *testing.T) {
	r := newFakeRepo()
	s := newTestSvc(r)

	if err := s.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := s.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if len(r.admins) != 1 {
		t.Fatalf("admins = %d, want 1", len(r.admins))
	}
}
