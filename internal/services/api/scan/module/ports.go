package module

import (
	"context"
	"io"

	urlcheck "hashvault/internal/core/urlcheck"
	"hashvault/internal/services/api/scan/domain"
	scansvc "hashvault/internal/services/api/scan/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptScanPort struct{ svc scansvc.Service }

// ScanFile classifies uploaded file content
func (a adaptScanPort) ScanFile(ctx context.Context, filename string, content io.Reader) (domain.ScanResult, error) {
	return a.svc.ScanFile(ctx, filename, content)
}

// ScanURL classifies a url by reputation
func (a adaptScanPort) ScanURL(ctx context.Context, in domain.URLScanInput) (domain.ScanResult, error) {
	return a.svc.ScanURL(ctx, in)
}

// History returns one page of scan events
func (a adaptScanPort) History(ctx context.Context, in domain.HistoryInput) (domain.HistoryResult, error) {
	return a.svc.History(ctx, in)
}

// FileStatus answers a cached hash status lookup
func (a adaptScanPort) FileStatus(ctx context.Context, hash string) (domain.FileStatusResult, error) {
	return a.svc.FileStatus(ctx, hash)
}

// URLQuickCheck runs the offline heuristic classifier
func (a adaptScanPort) URLQuickCheck(raw string) (urlcheck.Result, error) {
	return a.svc.URLQuickCheck(raw)
}
