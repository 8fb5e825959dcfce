package domain

import (
	"context"
	"io"

	urlcheck "hashvault/internal/core/urlcheck"
)

// ServicePort is the scan operations other layers consume
type ServicePort interface {
	ScanFile(ctx context.Context, filename string, content io.Reader) (ScanResult, error)
	ScanURL(ctx context.Context, in URLScanInput) (ScanResult, error)
	History(ctx context.Context, in HistoryInput) (HistoryResult, error)
	FileStatus(ctx context.Context, hash string) (FileStatusResult, error)
	URLQuickCheck(raw string) (urlcheck.Result, error)
}
