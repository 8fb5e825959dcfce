// Package http provides http transport for auth
package http

import (
	stdhttp "net/http"

	"hashvault/internal/modkit/httpkit"
	"hashvault/internal/services/api/auth/domain"
	svc "hashvault/internal/services/api/auth/service"
)

// Register mounts the public auth endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.LoginInput](r, "/login", h.login)
}

// RegisterProtected mounts the endpoints that require a valid session
func RegisterProtected(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Post(r, "/logout", h.logout)
}

type handlers struct {
	svc svc.Service
}

// @Summary Log in with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body domain.LoginInput true "Credentials"
// @Success 200 {object} domain.LoginResult "ok"
// @Failure 401 {object} httpkit.Envelope "invalid credentials"
// @Router /auth/login [post]
func (h *handlers) login(r *stdhttp.Request, in domain.LoginInput) (any, error) {
	return h.svc.Login(r.Context(), in)
}

// @Summary Revoke the current session token
// @Tags Auth
// @Produce json
// @Success 200 {object} httpkit.Envelope "ok"
// @Router /auth/logout [post]
func (h *handlers) logout(r *stdhttp.Request) (any, error) {
	token, err := httpkit.BearerToken(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Logout(r.Context(), token); err != nil {
		return nil, err
	}
	return map[string]any{"loggedOut": true}, nil
}
