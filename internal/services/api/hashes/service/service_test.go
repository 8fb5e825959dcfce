package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	perr "hashvault/internal/platform/errors"
	"hashvault/internal/services/api/hashes/domain"
	"hashvault/internal/services/api/hashes/repo"
	ingestdom "hashvault/internal/services/ingest/domain"
)

type fakeRepo struct {
	rows    map[string]repo.Row // keyed by hash
	nextID  int
	deleted []string
}

func newFakeRepo(hashes ...string) *fakeRepo {
	f := &fakeRepo{rows: map[string]repo.Row{}}
	for _, h := range hashes {
		f.add(h)
	}
	return f
}

func (f *fakeRepo) add(hash string) repo.Row {
	f.nextID++
	row := repo.Row{ID: strings.Repeat("0", 3) + string(rune('a'+f.nextID)), Hash: hash, AddedAt: time.Now()}
	f.rows[hash] = row
	return row
}

func (f *fakeRepo) sorted() []repo.Row {
	out := make([]repo.Row, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	return out
}

func (f *fakeRepo) ExistsBatch(_ context.Context, hashes []string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for _, h := range hashes {
		if _, ok := f.rows[h]; ok {
			out[h] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeRepo) InsertBatch(_ context.Context, hashes []string) (ingestdom.BulkResult, error) {
	var res ingestdom.BulkResult
	for _, h := range hashes {
		if _, ok := f.rows[h]; ok {
			res.Conflicts = append(res.Conflicts, h)
			continue
		}
		f.add(h)
		res.Inserted = append(res.Inserted, h)
	}
	return res, nil
}

func (f *fakeRepo) Count(context.Context) (int, error) { return len(f.rows), nil }

func (f *fakeRepo) CountSince(_ context.Context, since time.Time) (int, error) {
	n := 0
	for _, r := range f.rows {
		if !r.AddedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Recent(_ context.Context, limit int) ([]repo.Row, error) {
	rows := f.sorted()
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeRepo) List(_ context.Context, offset, limit int) ([]repo.Row, error) {
	rows := f.sorted()
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (f *fakeRepo) Search(_ context.Context, term string, limit int) ([]repo.Row, error) {
	var out []repo.Row
	for _, r := range f.sorted() {
		if strings.Contains(r.Hash, term) {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByHash(_ context.Context, hash string) (repo.Row, error) {
	r, ok := f.rows[hash]
	if !ok {
		return repo.Row{}, perr.NotFoundf("hash not found")
	}
	return r, nil
}

func (f *fakeRepo) Insert(_ context.Context, hash string) (repo.Row, error) {
	if _, ok := f.rows[hash]; ok {
		return repo.Row{}, perr.DuplicateKeyf("hash already exists")
	}
	return f.add(hash), nil
}

func (f *fakeRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	for h, r := range f.rows {
		if r.ID == id {
			delete(f.rows, h)
			f.deleted = append(f.deleted, id)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) DailyCounts(context.Context, int) ([]repo.DailyRow, error) { return nil, nil }

func newTestSvc(r repo.Repo) *Svc {
	return &Svc{Repo: r}
}

func hashes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strings.Repeat("a", 28) + string(rune('a'+i/26)) + string(rune('a'+i%26)) + "xx"
	}
	return out
}

func TestList_PaginationBlock(t *testing.T) {
	r := newFakeRepo(hashes(45)...)
	s := newTestSvc(r)

	out, err := s.List(context.Background(), domain.ListInput{Page: 2, Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out.Hashes) != 20 {
		t.Fatalf("page len = %d, want 20", len(out.Hashes))
	}
	p := out.Pagination
	if p.CurrentPage != 2 || p.TotalPages != 3 || p.TotalHashes != 45 {
		t.Fatalf("pagination mismatch: %+v", p)
	}
	if !p.HasNextPage || !p.HasPrevPage {
		t.Fatalf("page 2 of 3 must have both neighbors: %+v", p)
	}
	if p.StartIndex != 20 || p.EndIndex != 40 {
		t.Fatalf("index window = [%d, %d), want [20, 40)", p.StartIndex, p.EndIndex)
	}
}

func TestList_DefaultsAndCaps(t *testing.T) {
	r := newFakeRepo(hashes(5)...)
	s := newTestSvc(r)

	out, err := s.List(context.Background(), domain.ListInput{Page: -3, Limit: 10000})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if out.Pagination.CurrentPage != 1 {
		t.Fatalf("negative page should default to 1, got %d", out.Pagination.CurrentPage)
	}
	if out.Pagination.Limit != 100 {
		t.Fatalf("oversized limit should cap at 100, got %d", out.Pagination.Limit)
	}
}

func TestSearch_MinLength(t *testing.T) {
	s := newTestSvc(newFakeRepo())

	for _, term := range []string{"", "ab", "  a  "} {
		if _, err := s.Search(context.Background(), term); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("Search(%q) = %v, want invalid argument", term, err)
		}
	}
}

func TestSearch_FindsSubstring(t *testing.T) {
	r := newFakeRepo(strings.Repeat("a", 32), strings.Repeat("b", 32))
	s := newTestSvc(r)

	out, err := s.Search(context.Background(), "bbbb")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.TotalFound != 1 || out.SearchTerm != "bbbb" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestCreate_TrimsAndRejectsBlank(t *testing.T) {
	r := newFakeRepo()
	s := newTestSvc(r)

	rec, err := s.Create(context.Background(), domain.CreateInput{Hash: "  " + strings.Repeat("c", 32) + "  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Hash != strings.Repeat("c", 32) {
		t.Fatalf("hash should be trimmed, got %q", rec.Hash)
	}

	if _, err := s.Create(context.Background(), domain.CreateInput{Hash: "   "}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank hash should be invalid, got %v", err)
	}
}

func TestCreate_DuplicateIsDuplicateKey(t *testing.T) {
	h := strings.Repeat("d", 32)
	r := newFakeRepo(h)
	s := newTestSvc(r)

	_, err := s.Create(context.Background(), domain.CreateInput{Hash: h})
	if !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("duplicate create = %v, want duplicate key", err)
	}
	if len(r.rows) != 1 {
		t.Fatalf("duplicate create must not mutate the store")
	}
}

func TestDelete_UnknownIDIsNotFound(t *testing.T) {
	s := newTestSvc(newFakeRepo())

	if err := s.Delete(context.Background(), "missing"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown id = %v, want not found", err)
	}
	if err := s.Delete(context.Background(), " "); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank id = %v, want invalid argument", err)
	}
}

func TestKnown_MapsNotFound(t *testing.T) {
	h := strings.Repeat("e", 32)
	s := newTestSvc(newFakeRepo(h))

	ok, err := s.Known(context.Background(), h)
	if err != nil || !ok {
		t.Fatalf("Known(existing) = (%v, %v)", ok, err)
	}
	ok, err = s.Known(context.Background(), strings.Repeat("f", 32))
	if err != nil || ok {
		t.Fatalf("Known(missing) = (%v, %v), want false nil", ok, err)
	}
}

func TestAdd_DuplicateNotAnError(t *testing.T) {
	h := strings.Repeat("e", 32)
	s := newTestSvc(newFakeRepo(h))

	added, err := s.Add(context.Background(), h)
	if err != nil || added {
		t.Fatalf("Add(existing) = (%v, %v), want false nil", added, err)
	}
	added, err = s.Add(context.Background(), strings.Repeat("f", 32))
	if err != nil || !added {
		t.Fatalf("Add(new) = (%v, %v), want true nil", added, err)
	}
}
