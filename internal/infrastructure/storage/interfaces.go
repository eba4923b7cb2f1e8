package storage

// Repository defines the complete run-database interface.
// This keeps the CLI tools testable with the in-memory mock and leaves
// room to swap SQLite for something else later.
type Repository interface {
	RunRepository
	APICallRepository
	ResultRepository
	Close() error
}

// RunRepository tracks discovery/refresh tool runs and resume state.
type RunRepository interface {
	// StartRun records the start of a tool run and returns the run ID
	StartRun(tool string, planned int, dryRun bool) (int64, error)

	// UpdateRunProgress persists the last processed catalog index so an
	// interrupted run can resume where it left off
	UpdateRunProgress(runID int64, lastIndex, processed, found int) error

	// CompleteRun records the completion of a run
	CompleteRun(runID int64, processed, found, errored int) error

	// LastProcessedIndex returns the resume point for a tool: the
	// last_index of its most recent run (-1 when the tool never ran)
	LastProcessedIndex(tool string) (int, error)

	// ListRuns returns recent runs, newest first
	ListRuns(limit int) ([]Run, error)

	// GetRun retrieves a run by ID
	GetRun(runID int64) (*Run, error)
}

// Run represents one tool run.
type Run struct {
	ID          int64  `json:"id"`
	Tool        string `json:"tool"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Planned     int    `json:"planned"`
	Processed   int    `json:"processed"`
	Found       int    `json:"found"`
	Errored     int    `json:"errored"`
	LastIndex   int    `json:"last_index"`
	DryRun      bool   `json:"dry_run"`
	Status      string `json:"status"`
}

// APICallRepository logs outbound API calls for auditing rate budget use.
type APICallRepository interface {
	// LogAPICall logs an outbound call
	LogAPICall(call *APICall) error

	// GetAPICallsByRunID retrieves all calls made during a run
	GetAPICallsByRunID(runID int64) ([]APICall, error)

	// CountAPICallsSince counts calls after the given timestamp string
	// (SQLite datetime format), for enforcing the daily budget
	CountAPICallsSince(since string) (int, error)
}

// APICall represents a logged outbound API call.
type APICall struct {
	RunID      int64  `json:"run_id"`
	ProductID  string `json:"product_id"`
	Operation  string `json:"operation"`
	Query      string `json:"query"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// ResultRepository stores discovered ASIN results for export.
type ResultRepository interface {
	// SaveResult saves or replaces a discovered candidate
	SaveResult(result *ASINResult) error

	// ResultsByRunID retrieves results found during a run
	ResultsByRunID(runID int64) ([]ASINResult, error)

	// AllResults retrieves every stored result, ordered by product
	AllResults() ([]ASINResult, error)
}

// ASINResult is one discovered (product, ASIN) pair.
type ASINResult struct {
	RunID      int64   `json:"run_id"`
	ProductID  string  `json:"product_id"`
	ASIN       string  `json:"asin"`
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	FoundAt    string  `json:"found_at,omitempty"`
}
