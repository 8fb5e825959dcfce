// Package http provides http transport for the hash blocklist
package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hashvault/internal/core/hashtoken"
	"hashvault/internal/modkit/httpkit"
	perr "hashvault/internal/platform/errors"
	"hashvault/internal/platform/logger"
	phttp "hashvault/internal/platform/net/http"
	"hashvault/internal/services/api/hashes/domain"
	svc "hashvault/internal/services/api/hashes/service"
	ingestdom "hashvault/internal/services/ingest/domain"
	ingestsvc "hashvault/internal/services/ingest/service"
)

const uploadMaxBytes = 50 << 20 // 50MB

// Register mounts hashes endpoints on the given router
func Register(r httpkit.Router, s svc.Service, ingest ingestsvc.Service) {
	h := &handlers{svc: s, ingest: ingest}

	httpkit.Get(r, "/count", h.count)
	httpkit.Get(r, "/search", h.search)

	httpkit.Get(r, "/", h.list)
	httpkit.PostJSON[domain.CreateInput](r, "/", h.create)

	// streamed bulk upload; raw handler because it speaks SSE frames
	r.Post("/upload", h.upload)

	httpkit.Get(r, "/{hash}", h.getByHash)
	httpkit.Delete(r, "/{id}", h.remove)
}

type handlers struct {
	svc    svc.Service
	ingest ingestsvc.Service
}

// @Summary List hashes page by page
// @Tags Hashes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} domain.ListResult "ok"
// @Router /hashes [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return h.svc.List(r.Context(), domain.ListInput{Page: page, Limit: limit})
}

// @Summary Total hash count
// @Tags Hashes
// @Produce json
// @Success 200 {object} domain.CountResult "ok"
// @Router /hashes/count [get]
func (h *handlers) count(r *stdhttp.Request) (any, error) {
	n, err := h.svc.Count(r.Context())
	if err != nil {
		return nil, err
	}
	return domain.CountResult{
		TotalHashes: n,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// @Summary Substring search over hashes
// @Tags Hashes
// @Produce json
// @Param q query string true "Search term, min 3 chars"
// @Success 200 {object} domain.SearchResult "ok"
// @Router /hashes/search [get]
func (h *handlers) search(r *stdhttp.Request) (any, error) {
	return h.svc.Search(r.Context(), r.URL.Query().Get("q"))
}

// @Summary Look up one hash
// @Tags Hashes
// @Produce json
// @Param hash path string true "Hash value"
// @Success 200 {object} domain.HashRecord "ok"
// @Router /hashes/{hash} [get]
func (h *handlers) getByHash(r *stdhttp.Request) (any, error) {
	return h.svc.GetByHash(r.Context(), chi.URLParam(r, "hash"))
}

// @Summary Add a single hash
// @Tags Hashes
// @Accept json
// @Produce json
// @Param payload body domain.CreateInput true "Hash"
// @Success 201 {object} domain.HashRecord "created"
// @Router /hashes [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	rec, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(rec), nil
}

// @Summary Delete a hash by id
// @Tags Hashes
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} httpkit.Envelope "ok"
// @Router /hashes/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true}, nil
}

// upload streams ingestion progress as data frames over a long-lived response.
// Validation failures before the stream starts are plain JSON errors;
// anything after the first frame is reported in-stream
func (h *handlers) upload(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	log := logger.C(r.Context())

	r.Body = stdhttp.MaxBytesReader(w, r.Body, uploadMaxBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		phttp.RespondError(w, r, perr.InvalidArgf("file too large or malformed upload"))
		return
	}
	file, header, err := r.FormFile("virusFile")
	if err != nil {
		phttp.RespondError(w, r, perr.InvalidArgf("no file selected"))
		return
	}
	defer func() { _ = file.Close() }()

	ct := header.Header.Get("Content-Type")
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".txt") && ct != "text/plain" {
		phttp.RespondError(w, r, perr.InvalidArgf("only .txt files are accepted"))
		return
	}

	tokens, err := hashtoken.Extract(file)
	if err != nil {
		phttp.RespondError(w, r, perr.InvalidArgf("could not read uploaded file"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(stdhttp.StatusOK)

	flusher, _ := w.(stdhttp.Flusher)
	frame := func(v any) {
		b, err := json.Marshal(v)
		if err != nil {
			log.Error().Err(err).Msg("progress frame marshal failed")
			return
		}
		// writes to a gone client fail silently; the run carries on regardless
		_, _ = w.Write([]byte("data: " + string(b) + "\n\n"))
		if flusher != nil {
			flusher.Flush()
		}
	}

	log.Info().Int("tokens", len(tokens)).Str("filename", header.Filename).Msg("bulk upload started")

	// detach from the request context so ingestion finishes even if the
	// client stops listening mid-stream
	summary := h.ingest.Run(context.WithoutCancel(r.Context()), tokens, func(ev ingestdom.ProgressEvent) {
		frame(ev)
	})
	frame(summary)
}
