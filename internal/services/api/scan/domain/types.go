// Package domain holds scan types and ports
package domain

import "time"

// Scan record types
const (
	TypeFile = "file"
	TypeURL  = "url"
)

// Sources a verdict can come from
const (
	SourceLocal      = "local"
	SourceReputation = "virustotal"
)

// File statuses returned by the status lookup
const (
	StatusVirus = "virus"
	StatusClean = "clean"
)

// Record is one append-only scan event
type Record struct {
	Type            string    `json:"type"`
	Subject         string    `json:"subject"`
	Hash            string    `json:"hash"`
	Malicious       bool      `json:"malicious"`
	Detail          string    `json:"detail"`
	ThreatLevel     string    `json:"threatLevel"`
	AddedToDatabase bool      `json:"addedToDatabase"`
	Degraded        bool      `json:"degraded"`
	ScannedAt       time.Time `json:"scannedAt"`
}

// ScanResult is the verdict returned by file and url scans
type ScanResult struct {
	Hash            string `json:"hash"`
	Malicious       bool   `json:"malicious"`
	Detail          string `json:"detail"`
	ThreatLevel     string `json:"threatLevel"`
	AddedToDatabase bool   `json:"addedToDatabase"`
	Degraded        bool   `json:"degraded,omitempty"`
}

// URLScanInput is the scan/url request body
type URLScanInput struct {
	URL string `json:"url" validate:"required"`
}

// FileStatusResult is the cached hash status lookup response
type FileStatusResult struct {
	Hash        string `json:"hash"`
	Status      string `json:"status"`
	Source      string `json:"source"`
	Detail      string `json:"detail,omitempty"`
	ThreatLevel string `json:"threatLevel,omitempty"`
	Degraded    bool   `json:"degraded,omitempty"`
}

// HistoryInput selects one page of scan history
type HistoryInput struct {
	Page  int
	Limit int
}

// HistoryPagination is the page block on history responses
type HistoryPagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalScans  int  `json:"totalScans"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// HistoryResult is one page of scan events, newest first
type HistoryResult struct {
	Scans      []Record          `json:"scans"`
	Pagination HistoryPagination `json:"pagination"`
}
