package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := newTestDB(t)

	runID, err := store.StartRun("asin-discovery", 12, false)
	require.NoError(t, err)
	require.Greater(t, runID, int64(0))

	run, err := store.GetRun(runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "running", run.Status)
	assert.Equal(t, -1, run.LastIndex)
	assert.Equal(t, 12, run.Planned)

	require.NoError(t, store.UpdateRunProgress(runID, 5, 6, 4))
	run, err = store.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, 5, run.LastIndex)
	assert.Equal(t, 6, run.Processed)

	require.NoError(t, store.CompleteRun(runID, 12, 9, 0))
	run, err = store.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	assert.NotEmpty(t, run.CompletedAt)
}

func TestCompleteRun_WithErrors(t *testing.T) {
	store := newTestDB(t)

	runID, err := store.StartRun("price-refresh", 3, true)
	require.NoError(t, err)

	require.NoError(t, store.CompleteRun(runID, 3, 2, 1))
	run, err := store.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "completed_with_errors", run.Status)
	assert.True(t, run.DryRun)
}

func TestLastProcessedIndex_Resume(t *testing.T) {
	store := newTestDB(t)

	// No prior run: start from the beginning
	idx, err := store.LastProcessedIndex("asin-discovery")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	runID, err := store.StartRun("asin-discovery", 10, false)
	require.NoError(t, err)
	require.NoError(t, store.UpdateRunProgress(runID, 7, 8, 3))

	idx, err = store.LastProcessedIndex("asin-discovery")
	require.NoError(t, err)
	assert.Equal(t, 7, idx)

	// Other tools have their own resume state
	idx, err = store.LastProcessedIndex("price-refresh")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestAPICallLog(t *testing.T) {
	store := newTestDB(t)

	runID, err := store.StartRun("asin-discovery", 1, false)
	require.NoError(t, err)

	require.NoError(t, store.LogAPICall(&APICall{
		RunID: runID, ProductID: "giro-register-mips",
		Operation: "SearchItems", Query: "Giro Register MIPS",
		StatusCode: 200, DurationMs: 420,
	}))
	require.NoError(t, store.LogAPICall(&APICall{
		RunID: runID, ProductID: "bell-z20-mips",
		Operation: "SearchItems", Query: "Bell Z20 MIPS",
		StatusCode: 429, Error: "throttled", DurationMs: 80,
	}))

	calls, err := store.GetAPICallsByRunID(runID)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "SearchItems", calls[0].Operation)
	assert.Equal(t, "throttled", calls[1].Error)

	count, err := store.CountAPICallsSince("2000-01-01 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestASINResults_UpsertAndQuery(t *testing.T) {
	store := newTestDB(t)

	runID, err := store.StartRun("asin-discovery", 2, false)
	require.NoError(t, err)

	require.NoError(t, store.SaveResult(&ASINResult{
		RunID: runID, ProductID: "giro-register-mips", ASIN: "B07JLFMGZ2",
		Title: "Giro Register MIPS", Confidence: 0.7, Source: "scripted_search",
	}))
	// Same (product, asin) replaces
	require.NoError(t, store.SaveResult(&ASINResult{
		RunID: runID, ProductID: "giro-register-mips", ASIN: "B07JLFMGZ2",
		Title: "Giro Register MIPS Adult", Confidence: 0.9, Source: "paapi",
	}))
	require.NoError(t, store.SaveResult(&ASINResult{
		RunID: runID, ProductID: "bell-z20-mips", ASIN: "B000000001",
		Title: "Bell Z20", Confidence: 0.8, Source: "paapi",
	}))

	all, err := store.AllResults()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bell-z20-mips", all[0].ProductID)
	assert.Equal(t, 0.9, all[1].Confidence)

	byRun, err := store.ResultsByRunID(runID)
	require.NoError(t, err)
	assert.Len(t, byRun, 2)
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	store, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening applies no duplicate migrations
	store, err = NewStorage(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestMockRepository_MatchesSQLiteBehavior(t *testing.T) {
	var repo Repository = NewMockRepository()
	defer repo.Close()

	idx, err := repo.LastProcessedIndex("asin-discovery")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	runID, err := repo.StartRun("asin-discovery", 5, false)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateRunProgress(runID, 3, 4, 2))

	idx, err = repo.LastProcessedIndex("asin-discovery")
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	require.NoError(t, repo.CompleteRun(runID, 5, 3, 0))
	run, err := repo.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
}
