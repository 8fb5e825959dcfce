// Package http provides http transport for the scan module
package http

import (
	stdhttp "net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hashvault/internal/modkit/httpkit"
	perr "hashvault/internal/platform/errors"
	"hashvault/internal/services/api/scan/domain"
	svc "hashvault/internal/services/api/scan/service"
)

const scanMaxBytes = 32 << 20 // 32MB

// Register mounts scan endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Post(r, "/file", h.scanFile)
	httpkit.PostJSON[domain.URLScanInput](r, "/url", h.scanURL)
	httpkit.Get(r, "/history", h.history)
	httpkit.Get(r, "/file/{hash}", h.fileStatus)
	httpkit.Get(r, "/url/{url}", h.urlQuickCheck)
}

type handlers struct {
	svc svc.Service
}

// @Summary Scan an uploaded file by hash reputation
// @Tags Scan
// @Accept multipart/form-data
// @Produce json
// @Param scanFile formData file true "File to scan"
// @Success 200 {object} domain.ScanResult "ok"
// @Router /scan/file [post]
func (h *handlers) scanFile(r *stdhttp.Request) (any, error) {
	r.Body = stdhttp.MaxBytesReader(nil, r.Body, scanMaxBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, perr.InvalidArgf("file too large or malformed upload")
	}
	file, header, err := r.FormFile("scanFile")
	if err != nil {
		return nil, perr.InvalidArgf("no file selected")
	}
	defer func() { _ = file.Close() }()

	return h.svc.ScanFile(r.Context(), header.Filename, file)
}

// @Summary Scan a url by reputation
// @Tags Scan
// @Accept json
// @Produce json
// @Param payload body domain.URLScanInput true "URL"
// @Success 200 {object} domain.ScanResult "ok"
// @Router /scan/url [post]
func (h *handlers) scanURL(r *stdhttp.Request, in domain.URLScanInput) (any, error) {
	return h.svc.ScanURL(r.Context(), in)
}

// @Summary Paginated scan history, newest first
// @Tags Scan
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} domain.HistoryResult "ok"
// @Router /scan/history [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return h.svc.History(r.Context(), domain.HistoryInput{Page: page, Limit: limit})
}

// @Summary Cached status lookup for a file hash
// @Tags Scan
// @Produce json
// @Param hash path string true "File hash"
// @Success 200 {object} domain.FileStatusResult "ok"
// @Router /scan/file/{hash} [get]
func (h *handlers) fileStatus(r *stdhttp.Request) (any, error) {
	return h.svc.FileStatus(r.Context(), chi.URLParam(r, "hash"))
}

// @Summary Offline heuristic check for a url
// @Tags Scan
// @Produce json
// @Param url path string true "URL, path-escaped"
// @Success 200 {object} urlcheck.Result "ok"
// @Router /scan/url/{url} [get]
func (h *handlers) urlQuickCheck(r *stdhttp.Request) (any, error) {
	raw, err := url.PathUnescape(chi.URLParam(r, "url"))
	if err != nil {
		return nil, perr.InvalidArgf("malformed url parameter")
	}
	return h.svc.URLQuickCheck(raw)
}
