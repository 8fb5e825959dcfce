// Package reputation provides a VirusTotal v2 client for file and url verdicts
package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "hashvault/internal/platform/errors"
	"hashvault/internal/platform/logger"
)

const (
	baseURLDefault = "https://www.virustotal.com/vtapi/v2"
	defaultTimeout = 15 * time.Second

	// reportDelay is how long VT asks clients to wait between submitting
	// a url and fetching its report
	reportDelay = 2 * time.Second
)

// Threat levels derived from the VT detection ratio
const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"
)

// ErrUnavailable marks transport or upstream failures so callers can apply
// their own fail-open policy instead of mistaking an outage for a clean verdict
var ErrUnavailable = perr.New(perr.ErrorCodeUnavailable, "reputation service unavailable")

// IsUnavailable reports whether err is a reputation outage
func IsUnavailable(err error) bool { return perr.IsCode(err, perr.ErrorCodeUnavailable) }

// Verdict is a normalized reputation answer
type Verdict struct {
	Malicious   bool   `json:"malicious"`
	Detail      string `json:"detail"`
	ThreatLevel string `json:"threatLevel"`
}

// Port is the seam scan consumes; Client implements it
type Port interface {
	FileReport(ctx context.Context, hash string) (Verdict, error)
	URLReport(ctx context.Context, target string) (Verdict, error)
}

// Options configures the Client
type Options struct {
	BaseURL string
	Timeout time.Duration

	// APIKey is used for file reports and url report fetches
	APIKey string
	// URLAPIKey is used for url scan submissions, falls back to APIKey
	URLAPIKey string
}

// Client is a minimal VirusTotal v2 REST client
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.URLAPIKey == "" {
		o.URLAPIKey = o.APIKey
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("reputation"),
		sleep: time.Sleep,
	}
}

var _ Port = (*Client)(nil)

// report is the subset of the VT v2 report payload we read
type report struct {
	ResponseCode int `json:"response_code"`
	Positives    int `json:"positives"`
	Total        int `json:"total"`
}

// scanAck is the answer to a url scan submission
type scanAck struct {
	ScanID string `json:"scan_id"`
}

// FileReport fetches the VT file report for a hash
func (c *Client) FileReport(ctx context.Context, hash string) (Verdict, error) {
	q := url.Values{}
	q.Set("apikey", c.opts.APIKey)
	q.Set("resource", hash)

	var rep report
	if err := c.getJSON(ctx, "/file/report", q, &rep); err != nil {
		return Verdict{}, err
	}
	if rep.ResponseCode != 1 {
		return Verdict{
			Malicious:   false,
			Detail:      "hash not present in VirusTotal",
			ThreatLevel: LevelLow,
		}, nil
	}
	return verdictFromCounts(rep.Positives, rep.Total), nil
}

// URLReport submits target for scanning, waits, then fetches the report
func (c *Client) URLReport(ctx context.Context, target string) (Verdict, error) {
	form := url.Values{}
	form.Set("apikey", c.opts.URLAPIKey)
	form.Set("url", target)

	var ack scanAck
	if err := c.postForm(ctx, "/url/scan", form, &ack); err != nil {
		return Verdict{}, err
	}

	// VT needs a moment before the report exists
	c.sleep(reportDelay)

	resource := ack.ScanID
	if resource == "" {
		resource = target
	}
	q := url.Values{}
	q.Set("apikey", c.opts.APIKey)
	q.Set("resource", resource)

	var rep report
	if err := c.getJSON(ctx, "/url/report", q, &rep); err != nil {
		return Verdict{}, err
	}
	if rep.ResponseCode != 1 {
		return Verdict{
			Malicious:   false,
			Detail:      "url not present in VirusTotal",
			ThreatLevel: LevelLow,
		}, nil
	}
	return verdictFromCounts(rep.Positives, rep.Total), nil
}

// verdictFromCounts maps a detection ratio to a threat level
func verdictFromCounts(positives, total int) Verdict {
	level := LevelLow
	if total > 0 {
		ratio := float64(positives) / float64(total)
		if ratio > 0.10 {
			level = LevelHigh
		} else if ratio > 0.05 {
			level = LevelMedium
		}
	}
	return Verdict{
		Malicious:   positives > 0,
		Detail:      fmt.Sprintf("%d/%d engines flagged as malicious", positives, total),
		ThreatLevel: level,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "reputation new request failed")
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.opts.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "reputation new request failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", req.URL.Path).Msg("virustotal request failed")
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "reputation service unavailable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("virustotal bad status")
		return perr.Newf(perr.ErrorCodeUnavailable, "reputation service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "reputation response read failed")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "reputation response decode failed")
	}
	return nil
}
