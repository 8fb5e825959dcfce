// Package urlcheck classifies URLs with ordered offline heuristics
package urlcheck

import (
	"net/url"
	"regexp"
	"strings"

	perr "hashvault/internal/platform/errors"
)

// Status values returned by Check
const (
	StatusMalicious = "malicious"
	StatusClean     = "clean"
)

// Result is a classifier verdict with the matched rule's context
type Result struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

var badWords = []string{
	"phishing", "malware", "suspicious", "virus", "trojan", "hack",
	"exploit", "attack", "crack", "keygen", "warez", "spam", "scam",
}

var suspiciousTLDs = []string{
	".xyz", ".top", ".tk", ".ml", ".ga", ".cf", ".gq", ".cc", ".pw", ".club", ".online",
}

var maliciousDomains = []string{
	"malware.com", "virus.ru", "phishing.net", "scam.org",
}

var ipHost = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// rule is one ordered heuristic; the first non-nil Result wins
type rule func(u *url.URL) *Result

var rules = []rule{
	blockedDomain,
	keywordInPathOrQuery,
	suspiciousTLD,
	bareIPHost,
	plainHTTP,
}

// Check parses raw and runs the rule chain in order.
// A missing scheme defaults to https before parsing
func Check(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}, perr.InvalidArgf("url is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return Result{}, perr.InvalidArgf("invalid url format")
	}

	for _, r := range rules {
		if res := r(u); res != nil {
			return *res, nil
		}
	}
	return Result{
		Status:  StatusClean,
		Message: "no malicious indicators found",
		Details: map[string]string{
			"hostname": strings.ToLower(u.Hostname()),
			"path":     strings.ToLower(u.Path),
			"protocol": u.Scheme,
		},
	}, nil
}

func blockedDomain(u *url.URL) *Result {
	host := strings.ToLower(u.Hostname())
	for _, d := range maliciousDomains {
		if strings.Contains(host, d) {
			return &Result{
				Status:  StatusMalicious,
				Message: "hostname matches known malicious domain: " + d,
				Details: map[string]string{"hostname": host, "domain": d},
			}
		}
	}
	return nil
}

func keywordInPathOrQuery(u *url.URL) *Result {
	path := strings.ToLower(u.Path)
	query := strings.ToLower(u.RawQuery)
	for _, w := range badWords {
		if strings.Contains(path, w) || strings.Contains(query, w) {
			return &Result{
				Status:  StatusMalicious,
				Message: "url contains malicious keyword: " + w,
				Details: map[string]string{"hostname": strings.ToLower(u.Hostname()), "keyword": w},
			}
		}
	}
	return nil
}

func suspiciousTLD(u *url.URL) *Result {
	host := strings.ToLower(u.Hostname())
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return &Result{
				Status:  StatusMalicious,
				Message: "suspicious top level domain: " + tld,
				Details: map[string]string{"hostname": host, "tld": tld},
			}
		}
	}
	return nil
}

func bareIPHost(u *url.URL) *Result {
	host := strings.ToLower(u.Hostname())
	if ipHost.MatchString(host) {
		return &Result{
			Status:  StatusMalicious,
			Message: "url addresses a bare ip host",
			Details: map[string]string{"hostname": host},
		}
	}
	return nil
}

func plainHTTP(u *url.URL) *Result {
	if u.Scheme == "http" {
		return &Result{
			Status:  StatusMalicious,
			Message: "url uses plain http (not secure)",
			Details: map[string]string{"hostname": strings.ToLower(u.Hostname()), "protocol": u.Scheme},
		}
	}
	return nil
}
