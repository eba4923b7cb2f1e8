// Package pricing records point-in-time price snapshots per product and
// evaluates alert rules and deal quality against them.
package pricing

import (
	"time"

	"github.com/google/uuid"

	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
)

const (
	historyKey = "price_history"
	alertsKey  = "price_alerts"

	// maxSnapshotsPerProduct caps stored history; oldest snapshots are
	// pruned first.
	maxSnapshotsPerProduct = 100
)

// Snapshot is one point-in-time price observation. Snapshots are
// append-only; they are never mutated after recording.
type Snapshot struct {
	ProductID      string    `json:"productId"`
	Timestamp      time.Time `json:"timestamp"`
	MinPrice       float64   `json:"minPrice"`
	MaxPrice       float64   `json:"maxPrice"`
	AvgPrice       float64   `json:"avgPrice"`
	ListingCount   int       `json:"listingCount"`
	AvailableCount int       `json:"availableCount"`
	Source         string    `json:"source"`
	PriceChange    float64   `json:"priceChange"`
	PriceChangePct float64   `json:"priceChangePct"`
}

// AlertType enumerates alert trigger rules.
type AlertType string

// Alert types.
const (
	AlertTargetPrice   AlertType = "target_price"
	AlertPriceDrop     AlertType = "price_drop"
	AlertDealThreshold AlertType = "deal_threshold"
)

// Alert is a user-created price alert. An alert transitions
// active -> triggered at most once; once TriggeredAt is set it is never
// re-evaluated.
type Alert struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"productId"`
	TargetPrice  float64    `json:"targetPrice"`
	Type         AlertType  `json:"type"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	TriggeredAt  *time.Time `json:"triggeredAt,omitempty"`
	NotifyMethod string     `json:"notifyMethod"`
}

// AlertSpec is the user-supplied part of an alert.
type AlertSpec struct {
	ProductID    string    `json:"productId"`
	TargetPrice  float64   `json:"targetPrice"`
	Type         AlertType `json:"type"`
	NotifyMethod string    `json:"notifyMethod"`
}

// Notifier receives best-effort notifications for triggered alerts.
// Delivery failures are swallowed; alert state does not depend on them.
type Notifier interface {
	AlertTriggered(alert Alert, product catalog.Product, currentPrice float64)
}

// Store manages price history and alerts over blob storage.
type Store struct {
	blobs    blobstore.Store
	notifier Notifier
	now      func() time.Time
}

// NewStore creates a price tracking store. notifier may be nil.
func NewStore(blobs blobstore.Store, notifier Notifier) *Store {
	return &Store{blobs: blobs, notifier: notifier, now: time.Now}
}

// history is the full blob: snapshots keyed by product id.
type history map[string][]Snapshot

func (s *Store) loadHistory() history {
	h := history{}
	s.blobs.Get(historyKey, &h)
	return h
}

// RecordSnapshot appends a snapshot for the product, computing the price
// delta against the most recent prior snapshot (zero when none exists),
// and prunes to the most recent 100 snapshots for that product.
func (s *Store) RecordSnapshot(p catalog.Product, source string) Snapshot {
	h := s.loadHistory()
	prior := h[p.ID]

	snap := Snapshot{
		ProductID:      p.ID,
		Timestamp:      s.now(),
		MinPrice:       p.MinPrice,
		MaxPrice:       p.MaxPrice,
		AvgPrice:       p.AvgPrice,
		ListingCount:   p.ListingCount,
		AvailableCount: p.AvailableCount,
		Source:         source,
	}

	if len(prior) > 0 {
		prev := prior[len(prior)-1]
		snap.PriceChange = snap.AvgPrice - prev.AvgPrice
		if prev.AvgPrice > 0 {
			snap.PriceChangePct = snap.PriceChange / prev.AvgPrice * 100
		}
	}

	prior = append(prior, snap)
	if len(prior) > maxSnapshotsPerProduct {
		prior = prior[len(prior)-maxSnapshotsPerProduct:]
	}
	h[p.ID] = prior

	_ = s.blobs.Put(historyKey, h)
	return snap
}

// History returns the most recent limit snapshots for a product, oldest
// first. limit <= 0 returns everything.
func (s *Store) History(productID string, limit int) []Snapshot {
	snaps := s.loadHistory()[productID]
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[len(snaps)-limit:]
	}
	return snaps
}

// CreateAlert stores a new active alert and returns it.
func (s *Store) CreateAlert(spec AlertSpec) Alert {
	alert := Alert{
		ID:           uuid.NewString(),
		ProductID:    spec.ProductID,
		TargetPrice:  spec.TargetPrice,
		Type:         spec.Type,
		IsActive:     true,
		CreatedAt:    s.now(),
		NotifyMethod: spec.NotifyMethod,
	}

	alerts := s.loadAlerts()
	alerts = append(alerts, alert)
	_ = s.blobs.Put(alertsKey, alerts)
	return alert
}

func (s *Store) loadAlerts() []Alert {
	var alerts []Alert
	s.blobs.Get(alertsKey, &alerts)
	return alerts
}

// ListAlerts returns alerts, optionally filtered by product id.
func (s *Store) ListAlerts(productID string) []Alert {
	alerts := s.loadAlerts()
	if productID == "" {
		return alerts
	}
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.ProductID == productID {
			out = append(out, a)
		}
	}
	return out
}

// DeactivateAlert clears the active flag on a matching alert.
func (s *Store) DeactivateAlert(id string) bool {
	alerts := s.loadAlerts()
	for i := range alerts {
		if alerts[i].ID == id {
			alerts[i].IsActive = false
			_ = s.blobs.Put(alertsKey, alerts)
			return true
		}
	}
	return false
}

// DeleteAlert removes a matching alert. Absent ids are a no-op.
func (s *Store) DeleteAlert(id string) bool {
	alerts := s.loadAlerts()
	out := alerts[:0]
	found := false
	for _, a := range alerts {
		if a.ID == id {
			found = true
			continue
		}
		out = append(out, a)
	}
	if found {
		_ = s.blobs.Put(alertsKey, out)
	}
	return found
}

// EvaluateAlerts checks every active, never-triggered alert for the
// product against its current price and recorded history, marking
// matching alerts as triggered. Callers evaluate before recording the
// new snapshot so "previous recorded price" means the latest stored one.
// Returns the alerts triggered by this call.
func (s *Store) EvaluateAlerts(p catalog.Product) []Alert {
	alerts := s.loadAlerts()
	current := p.AvgPrice

	snaps := s.History(p.ID, 0)
	var prevPrice float64
	hasPrev := len(snaps) > 0
	if hasPrev {
		prevPrice = snaps[len(snaps)-1].AvgPrice
	}

	deal := s.AnalyzeDeal(p)

	var triggered []Alert
	changed := false
	for i := range alerts {
		a := &alerts[i]
		if a.ProductID != p.ID || !a.IsActive || a.TriggeredAt != nil {
			continue
		}

		fire := false
		switch a.Type {
		case AlertTargetPrice:
			fire = current <= a.TargetPrice
		case AlertPriceDrop:
			fire = hasPrev && current < prevPrice
		case AlertDealThreshold:
			fire = deal.DealScore >= a.TargetPrice
		}

		if !fire {
			continue
		}

		now := s.now()
		a.TriggeredAt = &now
		a.IsActive = false
		changed = true
		triggered = append(triggered, *a)

		if s.notifier != nil {
			s.notifier.AlertTriggered(*a, p, current)
		}
	}

	if changed {
		_ = s.blobs.Put(alertsKey, alerts)
	}
	return triggered
}
