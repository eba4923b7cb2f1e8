package cli

import (
	"fmt"
	"strings"

	"github.com/helmwise/helmwise-backend/internal/infrastructure/storage"
)

// PrintHeader prints the tool header
func PrintHeader(tool string, dryRun bool) {
	mode := "PRODUCTION"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Printf("helmwise: %s (%s mode)\n", tool, mode)
}

// PrintConfiguration prints the run configuration
func PrintConfiguration(flags ToolFlags, planned int) {
	fmt.Printf("Planned: %d products | Batch size: %d", planned, flags.BatchSize)
	if flags.Offset > 0 {
		fmt.Printf(" | Offset: %d", flags.Offset)
	}
	if flags.Limit > 0 {
		fmt.Printf(" | Limit: %d", flags.Limit)
	}
	if flags.Headless {
		fmt.Printf(" | Headless: true")
	}
	fmt.Print("\n\n")
}

// RunSummary is what a tool reports when it finishes
type RunSummary struct {
	Processed int
	Found     int
	Errored   int
	Skipped   int
}

// PrintRunSummary prints the run result summary and all-time run stats
func PrintRunSummary(tool string, summary RunSummary, repo storage.Repository, errs []error) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: Processed=%d Found=%d Errors=%d Skipped=%d\n",
		summary.Processed, summary.Found, summary.Errored, summary.Skipped)

	if len(errs) > 0 {
		fmt.Println("\nErrors:")
		for _, err := range errs {
			fmt.Printf("  - %v\n", err)
		}
	}

	if repo != nil {
		runs, _ := repo.ListRuns(1000)
		var completed, totalFound int
		for _, r := range runs {
			if r.Tool != tool {
				continue
			}
			if r.Status == "completed" {
				completed++
			}
			totalFound += r.Found
		}
		if completed > 0 {
			fmt.Printf("\nAll-Time Stats: Runs=%d Found=%d\n", completed, totalFound)
		}
	}
}
