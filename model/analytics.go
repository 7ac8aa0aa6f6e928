package model

import "time"

// SearchEvent represents a single search invocation for analytics tracking
type SearchEvent struct {
	Query        string        `json:"query"`
	Approach     string        `json:"approach"` // "fuzzy" or "precise"
	Active       bool          `json:"active"`
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for popular search terms
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"search_count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To5ms    int `json:"bucket_0_5ms"`
	Bucket5To25ms   int `json:"bucket_5_25ms"`
	Bucket25To100ms int `json:"bucket_25_100ms"`
	Bucket100msPlus int `json:"bucket_100ms_plus"`
}

// AnalyticsSummary represents the aggregated search analytics
type AnalyticsSummary struct {
	TotalSearches            int                      `json:"total_searches"`
	ActiveSearches           int                      `json:"active_searches"`
	EmptyResultSearches      int                      `json:"empty_result_searches"`
	AvgResponseTime          float64                  `json:"avg_response_time_ms"`
	SearchesByApproach       map[string]int           `json:"searches_by_approach"`
	PopularSearches          []PopularSearch          `json:"popular_searches"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
	SnapshotEntities         int                      `json:"snapshot_entities"`
}
