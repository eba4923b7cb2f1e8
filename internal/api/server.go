// Package api exposes the helmet comparison stores over HTTP for the
// web frontend.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/helmwise/helmwise-backend/internal/api/handlers"
	"github.com/helmwise/helmwise-backend/internal/api/middleware"
	"github.com/helmwise/helmwise-backend/internal/catalog"
	"github.com/helmwise/helmwise-backend/internal/compare"
	"github.com/helmwise/helmwise-backend/internal/discovery"
	"github.com/helmwise/helmwise-backend/internal/infrastructure/storage"
	"github.com/helmwise/helmwise-backend/internal/pricing"
	"github.com/helmwise/helmwise-backend/internal/watchlist"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Deps holds everything the server serves. Repo may be nil when the
// run database is not wired up.
type Deps struct {
	Catalog    *catalog.Catalog
	Comparison *compare.Store
	Pricing    *pricing.Store
	Watchlist  *watchlist.Store
	Discovery  *discovery.Store
	Repo       storage.Repository
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	deps       Deps
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config: cfg,
		engine: gin.New(),
		logger: logger,
		deps:   deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(middleware.RequestLogger(s.logger))

	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	health := handlers.NewHealthHandler(Version)
	s.engine.GET("/health", health.Get)

	v1 := s.engine.Group("/api/v1")

	products := handlers.NewProductsHandler(s.deps.Catalog)
	v1.GET("/products", products.List)
	v1.GET("/products/:id", products.Get)

	prices := handlers.NewPricingHandler(s.deps.Pricing, s.deps.Catalog)
	v1.GET("/products/:id/history", prices.History)
	v1.GET("/products/:id/deal", prices.Deal)
	v1.GET("/products/:id/trend", prices.Trend)
	v1.GET("/alerts", prices.ListAlerts)
	v1.POST("/alerts", prices.CreateAlert)
	v1.POST("/alerts/:id/deactivate", prices.DeactivateAlert)
	v1.DELETE("/alerts/:id", prices.DeleteAlert)

	comparison := handlers.NewComparisonHandler(s.deps.Comparison, s.deps.Catalog)
	v1.GET("/comparison", comparison.List)
	v1.POST("/comparison", comparison.Add)
	v1.DELETE("/comparison", comparison.Clear)
	v1.DELETE("/comparison/:id", comparison.Remove)
	v1.GET("/comparison/analysis", comparison.Analyze)
	v1.GET("/comparison/metrics", comparison.Metrics)

	watched := handlers.NewWatchlistHandler(s.deps.Watchlist, s.deps.Catalog)
	v1.GET("/watchlist", watched.List)
	v1.POST("/watchlist", watched.Add)
	v1.DELETE("/watchlist/:id", watched.Remove)

	asins := handlers.NewDiscoveryHandler(s.deps.Discovery, s.deps.Catalog)
	v1.GET("/asin/coverage", asins.Coverage)
	v1.GET("/asin/:productId", asins.Candidates)
	v1.POST("/asin/:productId/submit", asins.Submit)
	v1.POST("/asin/:productId/verify", asins.Verify)

	stats := handlers.NewStatsHandler(
		s.deps.Catalog, s.deps.Comparison, s.deps.Pricing,
		s.deps.Watchlist, s.deps.Discovery, s.deps.Repo)
	v1.GET("/stats", stats.Get)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
