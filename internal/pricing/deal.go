package pricing

import (
	"github.com/helmwise/helmwise-backend/internal/catalog"
)

// Recommendation categories, from best to worst.
const (
	RecommendExcellentDeal = "excellent_deal"
	RecommendGoodDeal      = "good_deal"
	RecommendFairPrice     = "fair_price"
	RecommendWait          = "wait"
	RecommendOverpriced    = "overpriced"
)

// Deal score thresholds for the recommendation categories.
const (
	excellentThreshold = 90
	goodThreshold      = 75
	fairThreshold      = 50
	waitThreshold      = 25
)

// Confidence scaling: base confidence with zero history, growing with
// snapshot count up to the cap.
const (
	baseConfidence     = 0.30
	maxConfidence      = 0.95
	confidenceCapCount = 30
)

// DealAnalysis reports how favorable a product's current price is
// relative to its observed history.
type DealAnalysis struct {
	ProductID      string  `json:"productId"`
	CurrentPrice   float64 `json:"currentPrice"`
	HistoricalLow  float64 `json:"historicalLow"`
	HistoricalHigh float64 `json:"historicalHigh"`
	HistoricalAvg  float64 `json:"historicalAvg"`
	DealScore      float64 `json:"dealScore"`
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	SnapshotCount  int     `json:"snapshotCount"`
}

// AnalyzeDeal scores the product's current price against its snapshot
// history: 100 means at or below the historical low, 0 at or above the
// high. With no history the result is neutral (score 50, fair_price,
// confidence 0.30).
func (s *Store) AnalyzeDeal(p catalog.Product) DealAnalysis {
	return AnalyzeDeal(p, s.History(p.ID, 0))
}

// AnalyzeDeal is the pure scoring function behind Store.AnalyzeDeal.
func AnalyzeDeal(p catalog.Product, snaps []Snapshot) DealAnalysis {
	a := DealAnalysis{
		ProductID:     p.ID,
		CurrentPrice:  p.AvgPrice,
		SnapshotCount: len(snaps),
	}

	if len(snaps) == 0 {
		a.DealScore = 50
		a.Recommendation = RecommendFairPrice
		a.Confidence = baseConfidence
		return a
	}

	low, high, sum := snaps[0].AvgPrice, snaps[0].AvgPrice, 0.0
	for _, snap := range snaps {
		if snap.AvgPrice < low {
			low = snap.AvgPrice
		}
		if snap.AvgPrice > high {
			high = snap.AvgPrice
		}
		sum += snap.AvgPrice
	}

	a.HistoricalLow = low
	a.HistoricalHigh = high
	a.HistoricalAvg = sum / float64(len(snaps))
	a.DealScore = dealScore(p.AvgPrice, low, high)
	a.Recommendation = recommend(a.DealScore)
	a.Confidence = confidence(len(snaps))
	return a
}

// dealScore positions current within [low, high]: 100 at or below the
// low, 0 at or above the high.
func dealScore(current, low, high float64) float64 {
	switch {
	case current <= low:
		return 100
	case current >= high:
		return 0
	default:
		return (high - current) / (high - low) * 100
	}
}

func recommend(score float64) string {
	switch {
	case score >= excellentThreshold:
		return RecommendExcellentDeal
	case score >= goodThreshold:
		return RecommendGoodDeal
	case score >= fairThreshold:
		return RecommendFairPrice
	case score >= waitThreshold:
		return RecommendWait
	default:
		return RecommendOverpriced
	}
}

func confidence(snapshots int) float64 {
	if snapshots > confidenceCapCount {
		snapshots = confidenceCapCount
	}
	return baseConfidence + (maxConfidence-baseConfidence)*float64(snapshots)/confidenceCapCount
}

// Trend directions.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// trendWindowSize is how many snapshots make up each half of the
// comparison.
const trendWindowSize = 7

// trendThresholdPct is the magnitude beyond which a change counts as a
// trend rather than noise.
const trendThresholdPct = 5.0

// TrendResult classifies recent price movement.
type TrendResult struct {
	ProductID string  `json:"productId"`
	Direction string  `json:"direction"`
	ChangePct float64 `json:"changePct"`
	Samples   int     `json:"samples"`
}

// Trend compares the average of the most recent 7 snapshots against the
// preceding 7 within the window. Less than two full windows of history
// classifies as stable.
func (s *Store) Trend(productID string, windowDays int) TrendResult {
	snaps := s.History(productID, 0)

	if windowDays > 0 {
		cutoff := s.now().AddDate(0, 0, -windowDays)
		filtered := snaps[:0:0]
		for _, snap := range snaps {
			if !snap.Timestamp.Before(cutoff) {
				filtered = append(filtered, snap)
			}
		}
		snaps = filtered
	}

	result := TrendResult{ProductID: productID, Direction: TrendStable, Samples: len(snaps)}
	if len(snaps) < 2*trendWindowSize {
		return result
	}

	recent := snaps[len(snaps)-trendWindowSize:]
	previous := snaps[len(snaps)-2*trendWindowSize : len(snaps)-trendWindowSize]

	prevAvg := avgPrice(previous)
	recentAvg := avgPrice(recent)
	if prevAvg <= 0 {
		return result
	}

	result.ChangePct = (recentAvg - prevAvg) / prevAvg * 100
	switch {
	case result.ChangePct > trendThresholdPct:
		result.Direction = TrendRising
	case result.ChangePct < -trendThresholdPct:
		result.Direction = TrendFalling
	}
	return result
}

func avgPrice(snaps []Snapshot) float64 {
	var sum float64
	for _, s := range snaps {
		sum += s.AvgPrice
	}
	return sum / float64(len(snaps))
}
