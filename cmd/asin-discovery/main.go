// asin-discovery walks the helmet catalog and finds Amazon ASIN
// candidates for each product, using PA-API when credentials are
// configured and falling back to search-page scraping otherwise.
//
// Runs are resumable: progress is checkpointed to the run database
// after every product, and --resume picks up after the last processed
// catalog index.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/helmwise/helmwise-backend/internal/adapters/paapi"
	"github.com/helmwise/helmwise-backend/internal/adapters/scraper"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/cli"
	"github.com/helmwise/helmwise-backend/internal/discovery"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/logging"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/storage"
)

const toolName = "asin-discovery"

func main() {
	flags := cli.ParseToolFlags()

	path := flags.ConfigPath
	if path == "" {
		path = "config.yaml"
	}
	cfg := config.LoadOrEnvWithPath(path)
	if flags.Verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	logger := logging.NewToolLogger(cfg.Observability.Logging, toolName)

	if err := run(cfg, flags, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, flags cli.ToolFlags, logger *slog.Logger) error {
	cli.PrintHeader(toolName, flags.DryRun)

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	blobs, err := blobstore.NewFileStore(filepath.Join(cfg.Storage.DataDir, "stores"))
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	asins := discovery.NewStore(blobs)

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("open run database: %w", err)
	}
	defer func() { _ = repo.Close() }()

	offset := flags.Offset
	if flags.Resume {
		last, err := repo.LastProcessedIndex(toolName)
		if err != nil {
			return fmt.Errorf("read resume point: %w", err)
		}
		if last >= 0 {
			offset = last + 1
			logger.Info("resuming", "offset", offset)
		}
	}

	products := cat.All()
	if offset >= len(products) {
		return fmt.Errorf("no products at offset %d (catalog has %d)", offset, len(products))
	}
	products = products[offset:]
	if flags.Limit > 0 && flags.Limit < len(products) {
		products = products[:flags.Limit]
	}

	cli.PrintConfiguration(flags, len(products))

	finder := newFinder(cfg, flags, logger)

	runID, err := repo.StartRun(toolName, len(products), flags.DryRun)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}

	var summary cli.RunSummary
	var errs []error
	ctx := context.Background()

	for i, p := range products {
		candidates, callErr := finder.find(ctx, repo, runID, p)
		if callErr != nil {
			if errors.Is(callErr, paapi.ErrBudgetExhausted) {
				logger.Warn("call budget exhausted, stopping early", "processed", summary.Processed)
				errs = append(errs, callErr)
				summary.Errored++
				break
			}
			logger.Error("product failed", "product", p.ID, "error", callErr)
			errs = append(errs, fmt.Errorf("%s: %w", p.ID, callErr))
			summary.Errored++
		}

		for _, c := range candidates {
			if flags.DryRun {
				logger.Info("candidate (dry-run)",
					"product", p.ID, "asin", c.ASIN, "confidence", c.Confidence)
				continue
			}
			if asins.AddCandidate(p.ID, c) {
				summary.Found++
			}
			if err := repo.SaveResult(&storage.ASINResult{
				RunID:      runID,
				ProductID:  p.ID,
				ASIN:       c.ASIN,
				Title:      c.Title,
				Confidence: c.Confidence,
				Source:     c.Source,
			}); err != nil {
				logger.Warn("save result failed", "product", p.ID, "asin", c.ASIN, "error", err)
			}
		}

		summary.Processed++
		if err := repo.UpdateRunProgress(runID, offset+i, summary.Processed, summary.Found); err != nil {
			logger.Warn("checkpoint failed", "error", err)
		}

		if flags.BatchSize > 0 && summary.Processed%flags.BatchSize == 0 {
			logger.Info("batch done",
				"processed", summary.Processed, "found", summary.Found, "errors", summary.Errored)
		}
	}

	if err := repo.CompleteRun(runID, summary.Processed, summary.Found, summary.Errored); err != nil {
		logger.Warn("complete run failed", "error", err)
	}

	if flags.Out != "" && !flags.DryRun {
		if err := exportResults(repo, runID, flags.Out, flags.Format); err != nil {
			return fmt.Errorf("export results: %w", err)
		}
		logger.Info("results exported", "path", flags.Out, "format", flags.Format)
	}

	cli.PrintRunSummary(toolName, summary, repo, errs)

	if summary.Processed == 0 {
		return errors.New("no products processed")
	}
	return nil
}

// finder wraps the two discovery paths. PA-API is preferred; the
// scraper covers products the API cannot match or runs without
// credentials.
type finder struct {
	api     *paapi.Client
	scraper *scraper.Scraper
	logger  *slog.Logger
}

func newFinder(cfg *config.Config, flags cli.ToolFlags, logger *slog.Logger) *finder {
	f := &finder{logger: logger}

	if cfg.PAAPI.AccessKey != "" && cfg.PAAPI.SecretKey != "" {
		f.api = paapi.New(cfg.PAAPI, logger)
	} else {
		logger.Info("no PA-API credentials, using search-page scraping only")
	}

	var fetcher scraper.Fetcher
	if flags.Headless {
		fetcher = scraper.NewBrowserFetcher(cfg.Scraper)
	} else {
		fetcher = scraper.NewHTTPFetcher(cfg.Scraper)
	}
	f.scraper = scraper.New(cfg.Scraper, fetcher, logger)

	return f
}

// find returns scored candidates for one product.
func (f *finder) find(ctx context.Context, repo storage.Repository, runID int64, p catalog.Product) ([]discovery.Candidate, error) {
	for _, query := range discovery.SearchQueries(p) {
		if f.api != nil {
			candidates, err := f.searchAPI(ctx, repo, runID, p, query)
			if err == nil && len(candidates) > 0 {
				return candidates, nil
			}
			if errors.Is(err, paapi.ErrBudgetExhausted) {
				return nil, err
			}
			if err != nil && !errors.Is(err, paapi.ErrNoResults) {
				f.logger.Debug("api search failed, trying scraper",
					"product", p.ID, "query", query, "error", err)
			}
		}

		candidates, err := f.searchScraper(ctx, p, query)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
	}
	return nil, nil
}

func (f *finder) searchAPI(ctx context.Context, repo storage.Repository, runID int64, p catalog.Product, query string) ([]discovery.Candidate, error) {
	offers, err := f.api.SearchItems(ctx, query)

	call := &storage.APICall{
		RunID:     runID,
		ProductID: p.ID,
		Operation: "SearchItems",
		Query:     query,
	}
	if err != nil {
		call.Error = err.Error()
	} else {
		call.StatusCode = 200
	}
	if logErr := repo.LogAPICall(call); logErr != nil {
		f.logger.Warn("log api call failed", "error", logErr)
	}
	if err != nil {
		return nil, err
	}

	var candidates []discovery.Candidate
	for i, offer := range offers {
		if !discovery.ValidASIN(offer.ASIN) {
			continue
		}
		candidates = append(candidates, discovery.Candidate{
			ASIN:       offer.ASIN,
			SourceURL:  offer.DetailPageURL,
			Title:      offer.Title,
			Confidence: discovery.ScoreSearchResult(p, offer.Title, i),
			Source:     discovery.SourcePAAPI,
		})
	}
	return candidates, nil
}

func (f *finder) searchScraper(ctx context.Context, p catalog.Product, query string) ([]discovery.Candidate, error) {
	results, err := f.scraper.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var candidates []discovery.Candidate
	for _, r := range results {
		if !discovery.ValidASIN(r.ASIN) {
			continue
		}
		candidates = append(candidates, discovery.Candidate{
			ASIN:       r.ASIN,
			SourceURL:  r.URL,
			Title:      r.Title,
			Confidence: discovery.ScoreSearchResult(p, r.Title, r.Position),
			Source:     discovery.SourceScriptedSearch,
		})
	}
	return candidates, nil
}

func exportResults(repo storage.Repository, runID int64, out, format string) error {
	results, err := repo.ResultsByRunID(runID)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				r.ProductID,
				r.ASIN,
				r.Title,
				strconv.FormatFloat(r.Confidence, 'f', 2, 64),
				r.Source,
			})
		}
		return cli.ExportCSV(out,
			[]string{"product_id", "asin", "title", "confidence", "source"}, rows)
	case "json":
		return cli.ExportJSON(out, results)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
