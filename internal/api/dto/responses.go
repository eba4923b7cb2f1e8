package dto

// ListResponse wraps list endpoints with a count for convenience.
type ListResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// NewListResponse builds a ListResponse from a slice.
func NewListResponse[T any](items []T) ListResponse[T] {
	return ListResponse[T]{Count: len(items), Items: items}
}

// StatsResponse summarizes catalog coverage and tool run history.
type StatsResponse struct {
	Products        int            `json:"products"`
	Brands          int            `json:"brands"`
	Categories      int            `json:"categories"`
	ProductsByBand  map[string]int `json:"productsByBand"`
	WatchlistSize   int            `json:"watchlistSize"`
	ComparisonSize  int            `json:"comparisonSize"`
	ActiveAlerts    int            `json:"activeAlerts"`
	ASINCoverage    int            `json:"asinCoverage"`
	VerifiedASINs   int            `json:"verifiedAsins"`
	CompletedRuns   int            `json:"completedRuns"`
	LastRunTool     string         `json:"lastRunTool,omitempty"`
	LastRunFinished string         `json:"lastRunFinished,omitempty"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
