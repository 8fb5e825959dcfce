// Package domain holds dashboard aggregation types
package domain

import hashesdom "hashvault/internal/services/api/hashes/domain"

// Stats is the headline counter block
type Stats struct {
	TotalHashes int `json:"totalHashes"`
	TodayAdded  int `json:"todayAdded"`
	LastWeek    int `json:"lastWeek"`
	LastMonth   int `json:"lastMonth"`
}

// DailySeries is a zero-filled series for the activity chart
type DailySeries struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Overview is the full dashboard payload
type Overview struct {
	Stats        Stats                  `json:"stats"`
	RecentHashes []hashesdom.HashRecord `json:"recentHashes"`
	WeeklySeries DailySeries            `json:"weeklySeries"`
}
