package dto

// AddComparisonRequest adds a product to the comparison set.
type AddComparisonRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Source    string `json:"source"`
}

// CreateAlertRequest creates a price alert.
type CreateAlertRequest struct {
	ProductID    string  `json:"productId" binding:"required"`
	TargetPrice  float64 `json:"targetPrice"`
	Type         string  `json:"type" binding:"required"`
	NotifyMethod string  `json:"notifyMethod"`
}

// AddWatchlistRequest adds a product to the watchlist.
type AddWatchlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Priority  string `json:"priority"`
}

// SubmitASINRequest records a user-submitted ASIN for a product.
type SubmitASINRequest struct {
	ASIN      string `json:"asin" binding:"required"`
	SourceURL string `json:"sourceUrl"`
	Title     string `json:"title"`
}

// VerifyASINRequest marks a candidate as manually verified (or not).
type VerifyASINRequest struct {
	ASIN     string `json:"asin" binding:"required"`
	Verified bool   `json:"verified"`
}
