package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "hashvault/internal/platform/net/http"
	"hashvault/internal/services/api/hashes/domain"
	ingestdom "hashvault/internal/services/ingest/domain"
)

type fakeSvc struct {
	created []string
	deleted []string
	known   map[string]bool
}

func (f *fakeSvc) List(_ context.Context, in domain.ListInput) (domain.ListResult, error) {
	return domain.ListResult{
		Hashes:     []domain.HashRecord{{ID: "1", Hash: strings.Repeat("a", 32)}},
		Pagination: domain.Pagination{CurrentPage: in.Page, Limit: in.Limit, TotalHashes: 1},
	}, nil
}

func (f *fakeSvc) Count(context.Context) (int, error) { return 42, nil }

func (f *fakeSvc) Search(_ context.Context, term string) (domain.SearchResult, error) {
	return domain.SearchResult{SearchTerm: term}, nil
}

func (f *fakeSvc) GetByHash(_ context.Context, hash string) (domain.HashRecord, error) {
	return domain.HashRecord{ID: "1", Hash: hash}, nil
}

func (f *fakeSvc) Create(_ context.Context, in domain.CreateInput) (domain.HashRecord, error) {
	f.created = append(f.created, in.Hash)
	return domain.HashRecord{ID: "new", Hash: in.Hash, AddedAt: time.Now()}, nil
}

func (f *fakeSvc) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSvc) CountSince(context.Context, time.Time) (int, error) { return 0, nil }
func (f *fakeSvc) Recent(context.Context, int) ([]domain.HashRecord, error) {
	return nil, nil
}
func (f *fakeSvc) DailyCounts(context.Context, int) ([]domain.DailyCount, error) {
	return nil, nil
}
func (f *fakeSvc) Known(_ context.Context, h string) (bool, error) { return f.known[h], nil }
func (f *fakeSvc) Add(_ context.Context, _ string) (bool, error)   { return true, nil }

type fakeIngest struct {
	gotTokens []string
}

func (f *fakeIngest) Run(_ context.Context, tokens []string, emit ingestdom.Emitter) ingestdom.Summary {
	f.gotTokens = tokens
	if emit != nil {
		emit(ingestdom.ProgressEvent{Processed: len(tokens), Total: len(tokens), NewCount: len(tokens), Percent: 100})
	}
	return ingestdom.Summary{Completed: true, Success: true, Total: len(tokens), NewCount: len(tokens)}
}

func newTestRouter(s *fakeSvc, ing *fakeIngest) *chi.Mux {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), s, ing)
	return mux
}

func multipartBody(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpload_StreamsFramesAndSummary(t *testing.T) {
	s := &fakeSvc{}
	ing := &fakeIngest{}
	mux := newTestRouter(s, ing)

	content := strings.Repeat("a", 32) + "\n" + strings.Repeat("b", 32) + "\n"
	body, ct := multipartBody(t, "virusFile", "hashes.txt", "text/plain", content)

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("content-type = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("cache-control = %q", got)
	}
	if len(ing.gotTokens) != 2 {
		t.Fatalf("ingest got %d tokens, want 2", len(ing.gotTokens))
	}

	frames := parseFrames(t, rec.Body.String())
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2 (progress + summary): %q", len(frames), rec.Body.String())
	}
	var ev ingestdom.ProgressEvent
	if err := json.Unmarshal(frames[0], &ev); err != nil {
		t.Fatalf("progress frame: %v", err)
	}
	if ev.Processed != 2 || ev.Percent != 100 {
		t.Fatalf("unexpected progress frame: %+v", ev)
	}
	var sum ingestdom.Summary
	if err := json.Unmarshal(frames[1], &sum); err != nil {
		t.Fatalf("summary frame: %v", err)
	}
	if !sum.Completed || sum.Total != 2 {
		t.Fatalf("unexpected summary frame: %+v", sum)
	}
}

func TestUpload_RejectsNonTextFile(t *testing.T) {
	mux := newTestRouter(&fakeSvc{}, &fakeIngest{})

	body, ct := multipartBody(t, "virusFile", "payload.exe", "application/octet-stream", "junk")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "data: ") {
		t.Fatalf("rejected upload must not stream frames: %q", rec.Body.String())
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	mux := newTestRouter(&fakeSvc{}, &fakeIngest{})

	body, ct := multipartBody(t, "wrongField", "hashes.txt", "text/plain", "x")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCount_ShapesResponse(t *testing.T) {
	mux := newTestRouter(&fakeSvc{}, &fakeIngest{})

	req := httptest.NewRequest("GET", "/count", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data domain.CountResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.TotalHashes != 42 {
		t.Fatalf("totalHashes = %d, want 42", env.Data.TotalHashes)
	}
	if _, err := time.Parse(time.RFC3339, env.Data.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %v", err)
	}
}

func TestDelete_PassesID(t *testing.T) {
	s := &fakeSvc{}
	mux := newTestRouter(s, &fakeIngest{})

	req := httptest.NewRequest("DELETE", "/abc-123", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(s.deleted) != 1 || s.deleted[0] != "abc-123" {
		t.Fatalf("deleted = %v", s.deleted)
	}
}

func parseFrames(t *testing.T, body string) [][]byte {
	t.Helper()
	var out [][]byte
	for _, chunk := range strings.Split(body, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if !strings.HasPrefix(chunk, "data: ") {
			t.Fatalf("frame missing data prefix: %q", chunk)
		}
		out = append(out, []byte(strings.TrimPrefix(chunk, "data: ")))
	}
	return out
}
