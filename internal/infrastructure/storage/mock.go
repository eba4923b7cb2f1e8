package storage

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu      sync.Mutex
	nextRun int64
	runs    map[int64]*Run
	calls   []APICall
	results map[string]ASINResult // keyed by productID+"/"+asin
}

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:    make(map[int64]*Run),
		results: make(map[string]ASINResult),
	}
}

// Close implements Repository.
func (m *MockRepository) Close() error { return nil }

// StartRun implements RunRepository.
func (m *MockRepository) StartRun(tool string, planned int, dryRun bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRun++
	m.runs[m.nextRun] = &Run{
		ID:        m.nextRun,
		Tool:      tool,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Planned:   planned,
		LastIndex: -1,
		DryRun:    dryRun,
		Status:    "running",
	}
	return m.nextRun, nil
}

// UpdateRunProgress implements RunRepository.
func (m *MockRepository) UpdateRunProgress(runID int64, lastIndex, processed, found int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.runs[runID]; ok {
		r.LastIndex = lastIndex
		r.Processed = processed
		r.Found = found
	}
	return nil
}

// CompleteRun implements RunRepository.
func (m *MockRepository) CompleteRun(runID int64, processed, found, errored int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.runs[runID]; ok {
		r.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		r.Processed = processed
		r.Found = found
		r.Errored = errored
		if errored > 0 {
			r.Status = "completed_with_errors"
		} else {
			r.Status = "completed"
		}
	}
	return nil
}

// LastProcessedIndex implements RunRepository.
func (m *MockRepository) LastProcessedIndex(tool string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	last := -1
	var lastID int64 = -1
	for id, r := range m.runs {
		if r.Tool == tool && id > lastID {
			lastID = id
			last = r.LastIndex
		}
	}
	return last, nil
}

// ListRuns implements RunRepository.
func (m *MockRepository) ListRuns(limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetRun implements RunRepository.
func (m *MockRepository) GetRun(runID int64) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.runs[runID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

// LogAPICall implements APICallRepository.
func (m *MockRepository) LogAPICall(call *APICall) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, *call)
	return nil
}

// GetAPICallsByRunID implements APICallRepository.
func (m *MockRepository) GetAPICallsByRunID(runID int64) ([]APICall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []APICall
	for _, c := range m.calls {
		if c.RunID == runID {
			out = append(out, c)
		}
	}
	return out, nil
}

// CountAPICallsSince implements APICallRepository. The mock counts all
// calls; tests that care about time windows use the SQLite store.
func (m *MockRepository) CountAPICallsSince(string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls), nil
}

// SaveResult implements ResultRepository.
func (m *MockRepository) SaveResult(result *ASINResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[result.ProductID+"/"+result.ASIN] = *result
	return nil
}

// ResultsByRunID implements ResultRepository.
func (m *MockRepository) ResultsByRunID(runID int64) ([]ASINResult, error) {
	all, _ := m.AllResults()
	var out []ASINResult
	for _, r := range all {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

// AllResults implements ResultRepository.
func (m *MockRepository) AllResults() ([]ASINResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.results))
	for k := range m.results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi := strings.SplitN(keys[i], "/", 2)
		pj := strings.SplitN(keys[j], "/", 2)
		if pi[0] != pj[0] {
			return pi[0] < pj[0]
		}
		return m.results[keys[i]].Confidence > m.results[keys[j]].Confidence
	})

	out := make([]ASINResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.results[k])
	}
	return out, nil
}
