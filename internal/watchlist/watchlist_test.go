package watchlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
)

func TestAdd_DedupesByProduct(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore())

	require.True(t, store.Add("a", PriorityLow))
	require.True(t, store.Add("a", PriorityHigh))

	entries := store.List()
	require.Len(t, entries, 1)
	assert.Equal(t, PriorityHigh, entries[0].Priority)
}

func TestAdd_RejectsUnknownPriority(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore())
	assert.False(t, store.Add("a", Priority("urgent")))
	assert.Empty(t, store.List())
}

func TestList_PriorityThenAge(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore())

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	store.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	}

	store.Add("low", PriorityLow)
	store.Add("high-late", PriorityHigh)
	store.Add("med", PriorityMedium)
	store.Add("high-early", PriorityHigh)

	entries := store.List()
	require.Len(t, entries, 4)
	assert.Equal(t, "high-late", entries[0].ProductID) // added before high-early
	assert.Equal(t, "high-early", entries[1].ProductID)
	assert.Equal(t, "med", entries[2].ProductID)
	assert.Equal(t, "low", entries[3].ProductID)
}

func TestRemove(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore())
	store.Add("a", PriorityMedium)
	store.Add("b", PriorityMedium)

	store.Remove("a")
	entries := store.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ProductID)

	store.Remove("missing") // no-op
	assert.Len(t, store.List(), 1)
}

func TestTouch(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore())
	store.Add("a", PriorityMedium)

	assert.False(t, store.Touch("missing"))
	require.True(t, store.Touch("a"))

	entries := store.List()
	require.NotNil(t, entries[0].LastCheckedAt)
}

func TestCorruptBlobTreatedAsEmpty(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	store := NewStore(blobs)
	store.Add("a", PriorityMedium)

	blobs.Corrupt("watchlist")
	assert.Empty(t, store.List())
	assert.True(t, store.Add("b", PriorityLow))
	assert.Len(t, store.List(), 1)
}
