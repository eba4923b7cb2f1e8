package pricing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
)

type recordingNotifier struct {
	calls []Alert
}

func (r *recordingNotifier) AlertTriggered(alert Alert, _ catalog.Product, _ float64) {
	r.calls = append(r.calls, alert)
}

func newTestStore() (*Store, *recordingNotifier) {
	n := &recordingNotifier{}
	s := NewStore(blobstore.NewMemoryStore(), n)
	return s, n
}

func helmet(price float64) catalog.Product {
	return catalog.Product{
		ID:       "giro-register-mips",
		Brand:    "Giro",
		Name:     "Giro Register MIPS",
		MinPrice: price - 5,
		AvgPrice: price,
		MaxPrice: price + 5,
	}
}

func TestRecordSnapshot_FirstHasZeroDelta(t *testing.T) {
	store, _ := newTestStore()

	snap := store.RecordSnapshot(helmet(60), "paapi")
	assert.Zero(t, snap.PriceChange)
	assert.Zero(t, snap.PriceChangePct)
	assert.Equal(t, 60.0, snap.AvgPrice)
}

func TestRecordSnapshot_DeltaVersusPrevious(t *testing.T) {
	store, _ := newTestStore()

	store.RecordSnapshot(helmet(100), "paapi")
	snap := store.RecordSnapshot(helmet(90), "paapi")

	assert.InDelta(t, -10.0, snap.PriceChange, 1e-9)
	assert.InDelta(t, -10.0, snap.PriceChangePct, 1e-9)
}

func TestRecordSnapshot_PrunesTo100MostRecent(t *testing.T) {
	store, _ := newTestStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	store.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Hour)
	}

	for n := 0; n < 101; n++ {
		store.RecordSnapshot(helmet(float64(50+n)), "paapi")
	}

	snaps := store.History("giro-register-mips", 0)
	require.Len(t, snaps, 100)
	// The oldest (price 50) was dropped; the most recent 100 remain in order.
	assert.Equal(t, 51.0, snaps[0].AvgPrice)
	assert.Equal(t, 150.0, snaps[99].AvgPrice)
	for j := 1; j < len(snaps); j++ {
		assert.True(t, snaps[j].Timestamp.After(snaps[j-1].Timestamp))
	}
}

func TestHistory_Limit(t *testing.T) {
	store, _ := newTestStore()
	for n := 0; n < 5; n++ {
		store.RecordSnapshot(helmet(float64(100+n)), "paapi")
	}

	snaps := store.History("giro-register-mips", 2)
	require.Len(t, snaps, 2)
	assert.Equal(t, 103.0, snaps[0].AvgPrice)
	assert.Equal(t, 104.0, snaps[1].AvgPrice)
}

func TestAnalyzeDeal_NoHistoryIsNeutral(t *testing.T) {
	store, _ := newTestStore()

	a := store.AnalyzeDeal(helmet(60))
	assert.Equal(t, 50.0, a.DealScore)
	assert.Equal(t, RecommendFairPrice, a.Recommendation)
	assert.InDelta(t, 0.30, a.Confidence, 1e-9)
	assert.Zero(t, a.SnapshotCount)
}

func TestAnalyzeDeal_CurrentAtHistoricalLow(t *testing.T) {
	store, _ := newTestStore()

	// Oldest to newest: 100, 90, 80
	store.RecordSnapshot(helmet(100), "paapi")
	store.RecordSnapshot(helmet(90), "paapi")
	store.RecordSnapshot(helmet(80), "paapi")

	a := store.AnalyzeDeal(helmet(80))
	assert.Equal(t, 80.0, a.HistoricalLow)
	assert.Equal(t, 100.0, a.HistoricalHigh)
	assert.InDelta(t, 90.0, a.HistoricalAvg, 1e-9)
	assert.Equal(t, 100.0, a.DealScore)
	assert.Equal(t, RecommendExcellentDeal, a.Recommendation)
}

func TestAnalyzeDeal_CurrentAtHistoricalHigh(t *testing.T) {
	store, _ := newTestStore()

	store.RecordSnapshot(helmet(80), "paapi")
	store.RecordSnapshot(helmet(100), "paapi")

	a := store.AnalyzeDeal(helmet(100))
	assert.Equal(t, 0.0, a.DealScore)
	assert.Equal(t, RecommendOverpriced, a.Recommendation)
}

func TestAnalyzeDeal_MidRange(t *testing.T) {
	store, _ := newTestStore()

	store.RecordSnapshot(helmet(100), "paapi")
	store.RecordSnapshot(helmet(50), "paapi")

	a := store.AnalyzeDeal(helmet(75))
	assert.Equal(t, 50.0, a.DealScore)
	assert.Equal(t, RecommendFairPrice, a.Recommendation)
}

func TestAnalyzeDeal_ConfidenceCapsAt30Snapshots(t *testing.T) {
	var snaps []Snapshot
	for n := 0; n < 60; n++ {
		snaps = append(snaps, Snapshot{AvgPrice: 100})
	}

	capped := AnalyzeDeal(helmet(100), snaps)
	at30 := AnalyzeDeal(helmet(100), snaps[:30])
	assert.Equal(t, at30.Confidence, capped.Confidence)
	assert.Equal(t, 0.95, capped.Confidence)
}

func TestCreateAlert_StartsActive(t *testing.T) {
	store, _ := newTestStore()

	alert := store.CreateAlert(AlertSpec{
		ProductID:    "giro-register-mips",
		TargetPrice:  50,
		Type:         AlertTargetPrice,
		NotifyMethod: "email",
	})

	assert.NotEmpty(t, alert.ID)
	assert.True(t, alert.IsActive)
	assert.Nil(t, alert.TriggeredAt)

	alerts := store.ListAlerts("giro-register-mips")
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.ID, alerts[0].ID)
}

func TestEvaluateAlerts_TargetPrice(t *testing.T) {
	store, notifier := newTestStore()
	store.CreateAlert(AlertSpec{ProductID: "giro-register-mips", TargetPrice: 55, Type: AlertTargetPrice})

	// Above target: nothing fires
	assert.Empty(t, store.EvaluateAlerts(helmet(60)))

	// At target: fires once
	triggered := store.EvaluateAlerts(helmet(55))
	require.Len(t, triggered, 1)
	assert.NotNil(t, triggered[0].TriggeredAt)
	require.Len(t, notifier.calls, 1)
}

func TestEvaluateAlerts_NeverRetriggers(t *testing.T) {
	store, notifier := newTestStore()
	store.CreateAlert(AlertSpec{ProductID: "giro-register-mips", TargetPrice: 55, Type: AlertTargetPrice})

	require.Len(t, store.EvaluateAlerts(helmet(50)), 1)
	for n := 0; n < 5; n++ {
		assert.Empty(t, store.EvaluateAlerts(helmet(40)))
	}
	assert.Len(t, notifier.calls, 1)

	alerts := store.ListAlerts("giro-register-mips")
	require.Len(t, alerts, 1)
	assert.NotNil(t, alerts[0].TriggeredAt)
	assert.False(t, alerts[0].IsActive)
}

func TestEvaluateAlerts_PriceDrop(t *testing.T) {
	store, _ := newTestStore()
	store.CreateAlert(AlertSpec{ProductID: "giro-register-mips", Type: AlertPriceDrop})

	// No previous snapshot: no drop to detect
	assert.Empty(t, store.EvaluateAlerts(helmet(60)))

	store.RecordSnapshot(helmet(60), "paapi")
	assert.Empty(t, store.EvaluateAlerts(helmet(60)))

	triggered := store.EvaluateAlerts(helmet(55))
	assert.Len(t, triggered, 1)
}

func TestEvaluateAlerts_DealThreshold(t *testing.T) {
	store, _ := newTestStore()
	store.CreateAlert(AlertSpec{ProductID: "giro-register-mips", TargetPrice: 90, Type: AlertDealThreshold})

	store.RecordSnapshot(helmet(100), "paapi")
	store.RecordSnapshot(helmet(80), "paapi")

	// Current price at historical low scores 100 >= threshold 90
	triggered := store.EvaluateAlerts(helmet(80))
	assert.Len(t, triggered, 1)
}

func TestDeactivateAndDeleteAlert(t *testing.T) {
	store, _ := newTestStore()
	a := store.CreateAlert(AlertSpec{ProductID: "x", Type: AlertTargetPrice, TargetPrice: 1})

	assert.True(t, store.DeactivateAlert(a.ID))
	assert.False(t, store.DeactivateAlert("missing"))

	alerts := store.ListAlerts("x")
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].IsActive)

	assert.True(t, store.DeleteAlert(a.ID))
	assert.False(t, store.DeleteAlert(a.ID))
	assert.Empty(t, store.ListAlerts("x"))
}

func TestTrend(t *testing.T) {
	store, _ := newTestStore()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	store.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Hour)
	}

	// 7 snapshots at 100, then 7 at 120: rising
	for n := 0; n < 7; n++ {
		store.RecordSnapshot(helmet(100), "paapi")
	}
	for n := 0; n < 7; n++ {
		store.RecordSnapshot(helmet(120), "paapi")
	}

	store.now = func() time.Time { return base.Add(24 * time.Hour) }
	trend := store.Trend("giro-register-mips", 30)
	assert.Equal(t, TrendRising, trend.Direction)
	assert.InDelta(t, 20.0, trend.ChangePct, 1e-9)
}

func TestTrend_InsufficientHistoryIsStable(t *testing.T) {
	store, _ := newTestStore()
	for n := 0; n < 5; n++ {
		store.RecordSnapshot(helmet(100), "paapi")
	}
	trend := store.Trend("giro-register-mips", 30)
	assert.Equal(t, TrendStable, trend.Direction)
}

func TestTrend_SmallChangeIsStable(t *testing.T) {
	store, _ := newTestStore()
	for n := 0; n < 7; n++ {
		store.RecordSnapshot(helmet(100), "paapi")
	}
	for n := 0; n < 7; n++ {
		store.RecordSnapshot(helmet(103), "paapi")
	}
	trend := store.Trend("giro-register-mips", 0)
	assert.Equal(t, TrendStable, trend.Direction)
}

func TestCorruptBlobsDegradeToEmpty(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	store := NewStore(blobs, nil)

	store.RecordSnapshot(helmet(60), "paapi")
	store.CreateAlert(AlertSpec{ProductID: "giro-register-mips", Type: AlertTargetPrice, TargetPrice: 1})

	blobs.Corrupt("price_history")
	blobs.Corrupt("price_alerts")

	assert.Empty(t, store.History("giro-register-mips", 0))
	assert.Empty(t, store.ListAlerts(""))
	// Operations still work from the empty state
	snap := store.RecordSnapshot(helmet(61), "paapi")
	assert.Zero(t, snap.PriceChange)
}

func TestSnapshotOrderingPreserved(t *testing.T) {
	store, _ := newTestStore()
	for n := 0; n < 10; n++ {
		store.RecordSnapshot(helmet(float64(n)), fmt.Sprintf("s%d", n))
	}
	snaps := store.History("giro-register-mips", 0)
	for j := range snaps {
		assert.Equal(t, fmt.Sprintf("s%d", j), snaps[j].Source)
	}
}
