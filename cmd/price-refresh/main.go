// price-refresh fetches current Amazon offers for every product that
// has a best ASIN candidate, records price snapshots, evaluates price
// alerts, and stamps watchlist entries as checked.
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
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/cli"
	"github.com/helmwise/helmwise-backend/internal/discovery"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/logging"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/storage"
	"github.com/helmwise/helmwise-backend/internal/pricing"
	"github.com/helmwise/helmwise-backend/internal/watchlist"
)

const toolName = "price-refresh"

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

	if cfg.PAAPI.AccessKey == "" || cfg.PAAPI.SecretKey == "" {
		return errors.New("PA-API credentials are required for price refresh")
	}

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	blobs, err := blobstore.NewFileStore(filepath.Join(cfg.Storage.DataDir, "stores"))
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	asins := discovery.NewStore(blobs)
	prices := pricing.NewStore(blobs, pricing.NewLogNotifier(logger))
	watched := watchlist.NewStore(blobs)

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("open run database: %w", err)
	}
	defer func() { _ = repo.Close() }()

	// Products with a usable ASIN, watched products first by priority.
	type target struct {
		product catalog.Product
		asin    string
	}
	seen := map[string]bool{}
	var targets []target
	addTarget := func(productID string) {
		if seen[productID] {
			return
		}
		p, ok := cat.ByID(productID)
		if !ok {
			return
		}
		best, ok := asins.Best(productID)
		if !ok {
			return
		}
		seen[productID] = true
		targets = append(targets, target{product: p, asin: best.ASIN})
	}
	for _, entry := range watched.List() {
		addTarget(entry.ProductID)
	}
	for _, p := range cat.All() {
		addTarget(p.ID)
	}

	if flags.Offset > 0 {
		if flags.Offset >= len(targets) {
			return fmt.Errorf("no products at offset %d (%d have ASINs)", flags.Offset, len(targets))
		}
		targets = targets[flags.Offset:]
	}
	if flags.Limit > 0 && flags.Limit < len(targets) {
		targets = targets[:flags.Limit]
	}
	if len(targets) == 0 {
		return errors.New("no products have a best ASIN; run asin-discovery first")
	}

	cli.PrintConfiguration(flags, len(targets))

	client := paapi.New(cfg.PAAPI, logger)

	runID, err := repo.StartRun(toolName, len(targets), flags.DryRun)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}

	var summary cli.RunSummary
	var errs []error
	ctx := context.Background()

	for i, tgt := range targets {
		offers, err := client.GetItems(ctx, []string{tgt.asin})

		call := &storage.APICall{
			RunID:     runID,
			ProductID: tgt.product.ID,
			Operation: "GetItems",
			Query:     tgt.asin,
		}
		if err != nil {
			call.Error = err.Error()
		} else {
			call.StatusCode = 200
		}
		if logErr := repo.LogAPICall(call); logErr != nil {
			logger.Warn("log api call failed", "error", logErr)
		}

		switch {
		case errors.Is(err, paapi.ErrBudgetExhausted):
			logger.Warn("call budget exhausted, stopping early", "processed", summary.Processed)
			errs = append(errs, err)
			summary.Errored++
		case errors.Is(err, paapi.ErrNoResults):
			logger.Info("no offer for ASIN", "product", tgt.product.ID, "asin", tgt.asin)
			summary.Skipped++
		case err != nil:
			logger.Error("fetch failed", "product", tgt.product.ID, "asin", tgt.asin, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", tgt.product.ID, err))
			summary.Errored++
		default:
			offer := offers[0]
			if flags.DryRun {
				logger.Info("offer (dry-run)",
					"product", tgt.product.ID, "asin", tgt.asin, "price", offer.Price)
			} else {
				refreshed := applyOffer(tgt.product, offer)
				// Alerts compare against the previous recorded price,
				// so they run before the new snapshot lands.
				prices.EvaluateAlerts(refreshed)
				snap := prices.RecordSnapshot(refreshed, "paapi")
				watched.Touch(tgt.product.ID)

				logger.Info("snapshot recorded",
					"product", tgt.product.ID,
					"price", strconv.FormatFloat(snap.AvgPrice, 'f', 2, 64),
					"change", strconv.FormatFloat(snap.PriceChange, 'f', 2, 64))
			}
			summary.Found++
		}

		if errors.Is(err, paapi.ErrBudgetExhausted) {
			break
		}

		summary.Processed++
		if upErr := repo.UpdateRunProgress(runID, i, summary.Processed, summary.Found); upErr != nil {
			logger.Warn("checkpoint failed", "error", upErr)
		}
	}

	if err := repo.CompleteRun(runID, summary.Processed, summary.Found, summary.Errored); err != nil {
		logger.Warn("complete run failed", "error", err)
	}

	cli.PrintRunSummary(toolName, summary, repo, errs)

	if summary.Processed == 0 {
		return errors.New("no products processed")
	}
	return nil
}

// applyOffer overlays live offer data on the catalog product so the
// snapshot reflects what Amazon reports right now.
func applyOffer(p catalog.Product, offer paapi.Offer) catalog.Product {
	if offer.Price > 0 {
		p.AvgPrice = offer.Price
	}
	if offer.LowestPrice > 0 {
		p.MinPrice = offer.LowestPrice
	}
	if offer.HighestPrice > 0 {
		p.MaxPrice = offer.HighestPrice
	}
	if offer.OfferCount > 0 {
		p.ListingCount = offer.OfferCount
	}
	if offer.Available {
		p.AvailableCount = p.ListingCount
	} else {
		p.AvailableCount = 0
	}
	return p
}
