// Package service implements session auth for the console
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hashvault/internal/modkit/repokit"
	perr "hashvault/internal/platform/errors"
	"hashvault/internal/platform/logger"
	"hashvault/internal/services/api/auth/domain"
	"hashvault/internal/services/api/auth/repo"
)

// Default credential ensured at startup; PasswordStatus nags until it changes
const (
	defaultUsername = "admin"
	defaultPassword = "admin123"
)

// Service defines the auth service contract
type Service interface {
	domain.ServicePort

	// EnsureDefaultAdmin creates the bootstrap account when no admins exist
	EnsureDefaultAdmin(ctx context.Context) error
}

// Svc implements the auth service
type Svc struct {
	Repo repo.Repo
	log  logger.Logger
	now  func() time.Time
}

// New constructs an auth service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("auth.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("auth.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo: binder.Bind(db),
		log:  *logger.Named("auth"),
		now:  time.Now,
	}
}

// Login verifies credentials and issues a bearer token
func (s *Svc) Login(ctx context.Context, in domain.LoginInput) (domain.LoginResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return domain.LoginResult{}, perr.InvalidArgf("username and password are required")
	}

	admin, err := s.Repo.GetAdminByUsername(ctx, username)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.LoginResult{}, perr.Unauthorizedf("invalid credentials")
		}
		return domain.LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)) != nil {
		return domain.LoginResult{}, perr.Unauthorizedf("invalid credentials")
	}

	sess := repo.SessionRow{
		Token:     uuid.NewString(),
		AdminID:   admin.ID,
		ExpiresAt: s.now().Add(domain.SessionTTL),
	}
	if err := s.Repo.InsertSession(ctx, sess); err != nil {
		return domain.LoginResult{}, err
	}

	s.log.Info().Str("username", username).Msg("admin logged in")

	return domain.LoginResult{
		Token:     sess.Token,
		Username:  admin.Username,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout revokes the given token. Unknown tokens are not an error
func (s *Svc) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return perr.InvalidArgf("token is required")
	}
	return s.Repo.DeleteSession(ctx, token)
}

// ParseToken resolves a bearer token to its admin id, rejecting expired sessions
func (s *Svc) ParseToken(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", perr.Unauthorizedf("missing token")
	}
	sess, err := s.Repo.GetSession(ctx, token)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return "", perr.Unauthorizedf("invalid token")
		}
		return "", err
	}
	if s.now().After(sess.ExpiresAt) {
		// lazy sweep; the row is dead either way
		_ = s.Repo.DeleteSession(ctx, token)
		return "", perr.Unauthorizedf("token expired")
	}
	return sess.AdminID, nil
}

// ChangePassword verifies the old credential and stores a fresh hash
func (s *Svc) ChangePassword(ctx context.Context, adminID string, in domain.ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return perr.InvalidArgf("all password fields are required")
	}
	if in.NewPassword != in.ConfirmPassword {
		return perr.InvalidArgf("new passwords do not match")
	}
	if len(in.NewPassword) < domain.MinPasswordLen {
		return perr.InvalidArgf("new password must be at least %d characters", domain.MinPasswordLen)
	}

	admin, err := s.Repo.GetAdminByID(ctx, adminID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.OldPassword)) != nil {
		return perr.Unauthorizedf("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return perr.Internalf("hash password: %v", err)
	}
	if err := s.Repo.UpdatePasswordHash(ctx, adminID, string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("admin_id", adminID).Msg("admin password changed")
	return nil
}

// PasswordStatus reports whether the account still uses the bootstrap password
func (s *Svc) PasswordStatus(ctx context.Context, adminID string) (domain.PasswordStatus, error) {
	admin, err := s.Repo.GetAdminByID(ctx, adminID)
	if err != nil {
		return domain.PasswordStatus{}, err
	}
	stillDefault := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(defaultPassword)) == nil
	return domain.PasswordStatus{PasswordChangeRequired: stillDefault}, nil
}

// EnsureDefaultAdmin creates the bootstrap account on an empty admins table
func (s *Svc) EnsureDefaultAdmin(ctx context.Context) error {
	n, err := s.Repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return perr.Internalf("hash default password: %v", err)
	}
	if err := s.Repo.InsertAdmin(ctx, uuid.NewString(), defaultUsername, string(hash)); err != nil {
		// a concurrent boot may have won the race
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			return nil
		}
		return err
	}

	s.log.Warn().Str("username", defaultUsername).Msg("default admin created, change the password")
	return nil
}
