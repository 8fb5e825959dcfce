package service

import (
	"context"
	"testing"
	"time"

	hashesdom "hashvault/internal/services/api/hashes/domain"
)

type fakeStats struct {
	total  int
	recent []hashesdom.HashRecord
	daily  []hashesdom.DailyCount

	sinceCalls []time.Time
}

func (f *fakeStats) Count(context.Context) (int, error) { return f.total, nil }

func (f *fakeStats) CountSince(_ context.Context, since time.Time) (int, error) {
	f.sinceCalls = append(f.sinceCalls, since)
	return len(f.sinceCalls), nil
}

func (f *fakeStats) Recent(_ context.Context, limit int) ([]hashesdom.HashRecord, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeStats) DailyCounts(_ context.Context, _ int) ([]hashesdom.DailyCount, error) {
	return f.daily, nil
}

func TestStats_WindowBoundaries(t *testing.T) {
	f := &fakeStats{total: 100}
	s := New(f)
	fixed := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	out, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if out.TotalHashes != 100 {
		t.Fatalf("total = %d, want 100", out.TotalHashes)
	}
	if len(f.sinceCalls) != 3 {
		t.Fatalf("CountSince calls = %d, want 3", len(f.sinceCalls))
	}
	midnight := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !f.sinceCalls[0].Equal(midnight) {
		t.Fatalf("today window starts at %v, want midnight", f.sinceCalls[0])
	}
	if !f.sinceCalls[1].Equal(fixed.AddDate(0, 0, -7)) {
		t.Fatalf("week window starts at %v", f.sinceCalls[1])
	}
	if !f.sinceCalls[2].Equal(fixed.AddDate(0, 0, -30)) {
		t.Fatalf("month window starts at %v", f.sinceCalls[2])
	}
}

func TestOverview_ZeroFillsSeries(t *testing.T) {
	f := &fakeStats{
		total:  5,
		recent: []hashesdom.HashRecord{{ID: "1"}},
		daily: []hashesdom.DailyCount{
			{Day: "2026-08-30", Count: 3},
			{Day: "2026-08-28", Count: 1},
		},
	}
	s := New(f)
	s.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	out, err := s.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(out.WeeklySeries.Labels) != 7 || len(out.WeeklySeries.Counts) != 7 {
		t.Fatalf("series should span 7 days: %+v", out.WeeklySeries)
	}
	if out.WeeklySeries.Labels[0] != "2026-08-25" || out.WeeklySeries.Labels[6] != "2026-08-31" {
		t.Fatalf("series labels wrong order: %v", out.WeeklySeries.Labels)
	}
	// sparse days fill as zero, reported days keep their counts
	want := []int{0, 0, 0, 1, 0, 3, 0}
	for i, n := range want {
		if out.WeeklySeries.Counts[i] != n {
			t.Fatalf("counts[%d] = %d, want %d (%v)", i, out.WeeklySeries.Counts[i], n, out.WeeklySeries.Counts)
		}
	}
	if len(out.RecentHashes) != 1 {
		t.Fatalf("recent = %v", out.RecentHashes)
	}
}
