// Package service aggregates blocklist counters for the dashboard
package service

import (
	"context"
	"time"

	"hashvault/internal/services/api/dashboard/domain"
	hashesdom "hashvault/internal/services/api/hashes/domain"
)

const (
	recentLimit = 10
	seriesDays  = 7
)

// Service defines the dashboard contract
type Service interface {
	Stats(ctx context.Context) (domain.Stats, error)
	Overview(ctx context.Context) (domain.Overview, error)
}

// Svc implements the dashboard service over the hashes stats port
type Svc struct {
	stats hashesdom.StatsPort
	now   func() time.Time
}

// New constructs a dashboard service
func New(stats hashesdom.StatsPort) *Svc {
	if stats == nil {
		panic("dashboard.Service requires a non nil StatsPort")
	}
	return &Svc{stats: stats, now: time.Now}
}

// Stats returns the headline counters
func (s *Svc) Stats(ctx context.Context) (domain.Stats, error) {
	total, err := s.stats.Count(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.stats.CountSince(ctx, midnight)
	if err != nil {
		return domain.Stats{}, err
	}
	week, err := s.stats.CountSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return domain.Stats{}, err
	}
	month, err := s.stats.CountSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		TotalHashes: total,
		TodayAdded:  today,
		LastWeek:    week,
		LastMonth:   month,
	}, nil
}

// Overview returns the counters plus recent records and the weekly series
func (s *Svc) Overview(ctx context.Context) (domain.Overview, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	recent, err := s.stats.Recent(ctx, recentLimit)
	if err != nil {
		return domain.Overview{}, err
	}
	daily, err := s.stats.DailyCounts(ctx, seriesDays)
	if err != nil {
		return domain.Overview{}, err
	}

	return domain.Overview{
		Stats:        stats,
		RecentHashes: recent,
		WeeklySeries: s.fillSeries(daily),
	}, nil
}

// fillSeries expands sparse daily counts into a dense 7 day window ending today
func (s *Svc) fillSeries(daily []hashesdom.DailyCount) domain.DailySeries {
	byDay := make(map[string]int, len(daily))
	for _, d := range daily {
		byDay[d.Day] = d.Count
	}

	out := domain.DailySeries{
		Labels: make([]string, 0, seriesDays),
		Counts: make([]int, 0, seriesDays),
	}
	now := s.now()
	for i := seriesDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		out.Labels = append(out.Labels, day)
		out.Counts = append(out.Counts, byDay[day])
	}
	return out
}
