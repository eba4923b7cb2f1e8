package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/helmwise/helmwise-backend/internal/api"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/compare"
	"github.com/helmwise/helmwise-backend/internal/discovery"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/blobstore"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/config"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/logging"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/storage"
	"github.com/helmwise/helmwise-backend/internal/pricing"
	"github.com/helmwise/helmwise-backend/internal/watchlist"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default config.yaml, then env)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = "config.yaml"
	}
	cfg := config.LoadOrEnvWithPath(path)

	logger := logging.NewToolLogger(cfg.Observability.Logging, "api")

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	blobs, err := blobstore.NewFileStore(filepath.Join(cfg.Storage.DataDir, "stores"))
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer func() { _ = repo.Close() }()

	server := api.NewServer(api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, api.Deps{
		Catalog:    cat,
		Comparison: compare.NewStore(blobs, cat),
		Pricing:    pricing.NewStore(blobs, pricing.NewLogNotifier(logger)),
		Watchlist:  watchlist.NewStore(blobs),
		Discovery:  discovery.NewStore(blobs),
		Repo:       repo,
	}, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
