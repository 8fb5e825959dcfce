// Package service implements the scan workflows on top of the local
// blocklist, the verdict caches, and the reputation port
package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"hashvault/internal/adapters/reputation"
	urlcheck "hashvault/internal/core/urlcheck"
	"hashvault/internal/modkit/repokit"
	perr "hashvault/internal/platform/errors"
	"hashvault/internal/platform/logger"
	hashesdom "hashvault/internal/services/api/hashes/domain"
	"hashvault/internal/services/api/scan/domain"
	"hashvault/internal/services/api/scan/repo"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	minStatusHashLen = 8

	// cached clean verdicts older than this are trusted without a fresh lookup
	cleanCacheAge = 3 * 24 * time.Hour
)

// Service defines the scan service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the scan service
type Svc struct {
	Repo       repo.Repo
	blocklist  hashesdom.BlocklistPort
	reputation reputation.Port
	log        logger.Logger
	now        func() time.Time
}

// New constructs a scan service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], blocklist hashesdom.BlocklistPort, rep reputation.Port) *Svc {
	if db == nil {
		panic("scan.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("scan.Service requires a non nil Repo binder")
	}
	if blocklist == nil {
		panic("scan.Service requires a non nil BlocklistPort")
	}
	if rep == nil {
		panic("scan.Service requires a non nil reputation Port")
	}
	return &Svc{
		Repo:       binder.Bind(db),
		blocklist:  blocklist,
		reputation: rep,
		log:        *logger.Named("scan"),
		now:        time.Now,
	}
}

// ScanFile hashes the uploaded content and classifies it. A local blocklist
// hit short-circuits the reputation lookup entirely
func (s *Svc) ScanFile(ctx context.Context, filename string, content io.Reader) (domain.ScanResult, error) {
	sum := md5.New()
	if _, err := io.Copy(sum, content); err != nil {
		return domain.ScanResult{}, perr.InvalidArgf("could not read uploaded file")
	}
	hash := hex.EncodeToString(sum.Sum(nil))

	known, err := s.blocklist.Known(ctx, hash)
	if err != nil {
		return domain.ScanResult{}, err
	}
	if known {
		res := domain.ScanResult{
			Hash:            hash,
			Malicious:       true,
			Detail:          "hash already known as malicious",
			ThreatLevel:     reputation.LevelHigh,
			AddedToDatabase: true,
		}
		s.record(ctx, domain.TypeFile, filename, res)
		return res, nil
	}

	verdict, degraded := s.lookup(ctx, hash, s.reputation.FileReport)

	res := domain.ScanResult{
		Hash:        hash,
		Malicious:   verdict.Malicious,
		Detail:      verdict.Detail,
		ThreatLevel: verdict.ThreatLevel,
		Degraded:    degraded,
	}
	if verdict.Malicious {
		added, err := s.blocklist.Add(ctx, hash)
		if err != nil {
			s.log.Warn().Err(err).Str("hash", hash).Msg("could not add scanned hash to blocklist")
		}
		res.AddedToDatabase = added
	}
	s.record(ctx, domain.TypeFile, filename, res)
	return res, nil
}

// ScanURL classifies a url, preferring the local malicious url cache
func (s *Svc) ScanURL(ctx context.Context, in domain.URLScanInput) (domain.ScanResult, error) {
	target := strings.TrimSpace(in.URL)
	if target == "" {
		return domain.ScanResult{}, perr.InvalidArgf("url is required")
	}

	if cached, err := s.Repo.GetMaliciousURL(ctx, target); err == nil {
		return domain.ScanResult{
			Hash:            cached.Hash,
			Malicious:       true,
			Detail:          "url already known as malicious",
			ThreatLevel:     cached.ThreatLevel,
			AddedToDatabase: true,
		}, nil
	} else if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.ScanResult{}, err
	}

	sum := md5.Sum([]byte(target))
	hash := hex.EncodeToString(sum[:])

	verdict, degraded := s.lookup(ctx, target, s.reputation.URLReport)

	res := domain.ScanResult{
		Hash:        hash,
		Malicious:   verdict.Malicious,
		Detail:      verdict.Detail,
		ThreatLevel: verdict.ThreatLevel,
		Degraded:    degraded,
	}
	if verdict.Malicious {
		err := s.Repo.InsertMaliciousURL(ctx, repo.MaliciousURL{
			URL:         target,
			Hash:        hash,
			ThreatLevel: verdict.ThreatLevel,
			Detail:      verdict.Detail,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("url", target).Msg("could not cache malicious url")
		} else {
			res.AddedToDatabase = true
		}
	}
	s.record(ctx, domain.TypeURL, target, res)
	return res, nil
}

// History returns one page of scan events, newest first
func (s *Svc) History(ctx context.Context, in domain.HistoryInput) (domain.HistoryResult, error) {
	page := in.Page
	if page < 1 {
		page = defaultPage
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := (page - 1) * limit

	total, err := s.Repo.CountScans(ctx)
	if err != nil {
		return domain.HistoryResult{}, err
	}
	scans, err := s.Repo.History(ctx, offset, limit)
	if err != nil {
		return domain.HistoryResult{}, err
	}
	totalPages := (total + limit - 1) / limit

	return domain.HistoryResult{
		Scans: scans,
		Pagination: domain.HistoryPagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalScans:  total,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// FileStatus answers a hash status lookup, consulting the blocklist, then the
// clean verdict cache, then the reputation service. Fresh reputation answers
// feed back into the caches
func (s *Svc) FileStatus(ctx context.Context, hash string) (domain.FileStatusResult, error) {
	hash = strings.TrimSpace(hash)
	if len(hash) < minStatusHashLen {
		return domain.FileStatusResult{}, perr.InvalidArgf("hash is too short")
	}

	known, err := s.blocklist.Known(ctx, hash)
	if err != nil {
		return domain.FileStatusResult{}, err
	}
	if known {
		return domain.FileStatusResult{
			Hash:   hash,
			Status: domain.StatusVirus,
			Source: domain.SourceLocal,
		}, nil
	}

	if cached, err := s.Repo.GetCleanHash(ctx, hash); err == nil {
		if s.now().Sub(cached.CreatedAt) > cleanCacheAge {
			return domain.FileStatusResult{
				Hash:   hash,
				Status: domain.StatusClean,
				Source: domain.SourceLocal,
			}, nil
		}
	} else if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.FileStatusResult{}, err
	}

	verdict, degraded := s.lookup(ctx, hash, s.reputation.FileReport)

	out := domain.FileStatusResult{
		Hash:        hash,
		Source:      domain.SourceReputation,
		Detail:      verdict.Detail,
		ThreatLevel: verdict.ThreatLevel,
		Degraded:    degraded,
	}
	if verdict.Malicious {
		out.Status = domain.StatusVirus
		if _, err := s.blocklist.Add(ctx, hash); err != nil {
			s.log.Warn().Err(err).Str("hash", hash).Msg("could not add hash to blocklist")
		}
		return out, nil
	}

	out.Status = domain.StatusClean
	if !degraded {
		if err := s.Repo.UpsertCleanHash(ctx, hash); err != nil {
			s.log.Warn().Err(err).Str("hash", hash).Msg("could not cache clean verdict")
		}
	}
	return out, nil
}

// URLQuickCheck runs the offline heuristic classifier; nothing is persisted
func (s *Svc) URLQuickCheck(raw string) (urlcheck.Result, error) {
	return urlcheck.Check(raw)
}

// lookup calls the reputation port and applies the fail-open policy: an
// unavailable upstream yields a clean low verdict flagged as degraded
func (s *Svc) lookup(ctx context.Context, subject string, fn func(context.Context, string) (reputation.Verdict, error)) (reputation.Verdict, bool) {
	verdict, err := fn(ctx, subject)
	if err == nil {
		return verdict, false
	}
	if reputation.IsUnavailable(err) {
		s.log.Warn().Err(err).Str("subject", subject).Msg("reputation service unavailable, failing open")
	} else {
		s.log.Error().Err(err).Str("subject", subject).Msg("reputation lookup failed, failing open")
	}
	return reputation.Verdict{
		Malicious:   false,
		Detail:      "reputation service unavailable",
		ThreatLevel: reputation.LevelLow,
	}, true
}

// record appends the scan event to the history log; failures are logged,
// never surfaced to the caller
func (s *Svc) record(ctx context.Context, typ, subject string, res domain.ScanResult) {
	err := s.Repo.RecordScan(ctx, domain.Record{
		Type:            typ,
		Subject:         subject,
		Hash:            res.Hash,
		Malicious:       res.Malicious,
		Detail:          res.Detail,
		ThreatLevel:     res.ThreatLevel,
		AddedToDatabase: res.AddedToDatabase,
		Degraded:        res.Degraded,
		ScannedAt:       s.now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("type", typ).Msg("could not record scan event")
	}
}
