// Package domain holds auth types and ports
package domain

import (
	"context"
	"time"
)

// SessionTTL is how long an issued token stays valid
const SessionTTL = 24 * time.Hour

// MinPasswordLen is the floor for new passwords
const MinPasswordLen = 6

// Admin is an operator account
type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginInput is the login request body
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued bearer token
type Session struct {
	Token     string    `json:"token"`
	AdminID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginResult is the login response
type LoginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChangePasswordInput is the change-password request body
type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// PasswordStatus reports whether the default credential is still in place
type PasswordStatus struct {
	PasswordChangeRequired bool `json:"passwordChangeRequired"`
}

// ServicePort is the auth surface other modules consume
type ServicePort interface {
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	Logout(ctx context.Context, token string) error
	ParseToken(ctx context.Context, token string) (adminID string, err error)
	ChangePassword(ctx context.Context, adminID string, in ChangePasswordInput) error
	PasswordStatus(ctx context.Context, adminID string) (PasswordStatus, error)
}
