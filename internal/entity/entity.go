// Package entity defines the wire-format shapes returned by the dam API.
// Field names follow the upstream JSON (snake_case); values are decoded
// without validation and normalized later by the mapper package.
package entity

// Summary is the aggregate across all dams returned by GET /summary.
type Summary struct {
	DataDate           string  `json:"data_date"`
	FetchedAt          string  `json:"fetched_at"`
	TotalPercentage    float64 `json:"total_percentage"`
	LastYearPercentage float64 `json:"last_year_percentage"`
	Delta              float64 `json:"delta"`
	TotalStorageMCM    float64 `json:"total_storage_mcm"`
	TotalCapacityMCM   float64 `json:"total_capacity_mcm"`
}

// TrendPoint is a single (date, percentage) sample.
type TrendPoint struct {
	Date       string  `json:"date"`
	Percentage float64 `json:"percentage"`
}

// Trend is the ordered sample sequence returned by GET /trend.
type Trend struct {
	Data []TrendPoint `json:"data"`
}
