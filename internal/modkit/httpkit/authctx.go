package httpkit

import (
	"net/http"
	"strings"

	perrs "hashvault/internal/platform/errors"
	pnet "hashvault/internal/platform/net"
)

// Admin returns the authenticated admin id from the request context
func Admin(r *http.Request) (string, error) {
	id := pnet.AdminID(r.Context())
	if id == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return id, nil
}

// MustAdmin returns the authenticated admin id or panics
// only use on routes protected by the auth middleware
func MustAdmin(r *http.Request) string {
	id, err := Admin(r)
	if err != nil {
		panic(err)
	}
	return id
}

// BearerToken returns the raw bearer token from the Authorization header
func BearerToken(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if strings.TrimSpace(authz) == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	// case-insensitive Bearer prefix (don't trim the whole header first)
	const prefix = "bearer "
	if len(authz) < len(prefix) || strings.ToLower(authz[:len(prefix)]) != prefix {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(authz[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}
