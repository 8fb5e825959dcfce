// Package http provides http transport for the dashboard
package http

import (
	stdhttp "net/http"

	"hashvault/internal/modkit/httpkit"
	svc "hashvault/internal/services/api/dashboard/service"
)

// Register mounts dashboard endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/stats", h.stats)
	httpkit.Get(r, "/overview", h.overview)
}

type handlers struct {
	svc svc.Service
}

// @Summary Headline blocklist counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.Stats "ok"
// @Router /dashboard/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.svc.Stats(r.Context())
}

// @Summary Counters plus recent records and the weekly series
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.Overview "ok"
// @Router /dashboard/overview [get]
func (h *handlers) overview(r *stdhttp.Request) (any, error) {
	return h.svc.Overview(r.Context())
}
