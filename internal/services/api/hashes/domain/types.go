// Package domain holds hash record types shared across the hashes module
package domain

import "time"

// HashRecord is one blocklisted file hash
// records are immutable; they are only ever inserted and deleted
type HashRecord struct {
	ID      string    `json:"id"`
	Hash    string    `json:"hash"`
	AddedAt time.Time `json:"addedAt"`
}

// Pagination is the page metadata block returned by list endpoints
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalHashes int  `json:"totalHashes"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Limit       int  `json:"limit"`
	StartIndex  int  `json:"startIndex"`
	EndIndex    int  `json:"endIndex"`
}

// DailyCount is one day of the dashboard's add-rate series
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}
