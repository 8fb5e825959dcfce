// Package http provides http transport for account settings
package http

import (
	stdhttp "net/http"

	"hashvault/internal/modkit/httpkit"
	authdom "hashvault/internal/services/api/auth/domain"
)

// Register mounts settings endpoints on the given router
// All routes assume the auth middleware already ran
func Register(r httpkit.Router, auth authdom.ServicePort) {
	h := &handlers{auth: auth}

	httpkit.PostJSON[authdom.ChangePasswordInput](r, "/change-password", h.changePassword)
	httpkit.Get(r, "/password-status", h.passwordStatus)
}

type handlers struct {
	auth authdom.ServicePort
}

// @Summary Change the current admin password
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body authdom.ChangePasswordInput true "Passwords"
// @Success 200 {object} httpkit.Envelope "ok"
// @Router /settings/change-password [post]
func (h *handlers) changePassword(r *stdhttp.Request, in authdom.ChangePasswordInput) (any, error) {
	adminID := httpkit.MustAdmin(r)
	if err := h.auth.ChangePassword(r.Context(), adminID, in); err != nil {
		return nil, err
	}
	return map[string]any{"changed": true}, nil
}

// @Summary Whether the default password is still in place
// @Tags Settings
// @Produce json
// @Success 200 {object} authdom.PasswordStatus "ok"
// @Router /settings/password-status [get]
func (h *handlers) passwordStatus(r *stdhttp.Request) (any, error) {
	adminID := httpkit.MustAdmin(r)
	return h.auth.PasswordStatus(r.Context(), adminID)
}
