package middleware

import (
	"net/http"

	pnet "hashvault/internal/platform/net"
)

// AuthPort is the seam the auth service implements for bearer session checks
type AuthPort interface {
	// Parse returns the admin id owning the request's session token or an error
	Parse(r *http.Request) (adminID string, err error)
}

// Auth rejects requests the port cannot attribute to an admin.
// A nil port leaves the route open
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			adminID, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithAdmin(r.Context(), adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
