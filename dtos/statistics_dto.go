package dtos

import "time"

type VulnerabilityStatistics struct {
	TotalCves      int64      `json:"totalCves"`
	CriticalCves   int64      `json:"criticalCves"`
	HighCves       int64      `json:"highCves"`
	MediumCves     int64      `json:"mediumCves"`
	LowCves        int64      `json:"lowCves"`
	UnscoredCves   int64      `json:"unscoredCves"`
	LastUpdated    *time.Time `json:"lastUpdated"`
	TodayPublished int64      `json:"todayPublished"`
	WeekPublished  int64      `json:"weekPublished"`
	MonthPublished int64      `json:"monthPublished"`
}
