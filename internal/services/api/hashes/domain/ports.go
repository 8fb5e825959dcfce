package domain

import (
	"context"
	"time"
)

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	List(ctx context.Context, in ListInput) (ListResult, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, term string) (SearchResult, error)
	GetByHash(ctx context.Context, hash string) (HashRecord, error)
	Create(ctx context.Context, in CreateInput) (HashRecord, error)
	Delete(ctx context.Context, id string) error
}

// StatsPort is the read-only slice the dashboard consumes
type StatsPort interface {
	Count(ctx context.Context) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	Recent(ctx context.Context, limit int) ([]HashRecord, error)
	DailyCounts(ctx context.Context, days int) ([]DailyCount, error)
}

// BlocklistPort is the membership slice the scan module consumes
type BlocklistPort interface {
	Known(ctx context.Context, hash string) (bool, error)
	Add(ctx context.Context, hash string) (added bool, err error)
}
