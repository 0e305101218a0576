//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-tripstats/internal/api"
	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/config"
	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/executor"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
	"github.com/pgEdge/pgedge-tripstats/internal/metrics"
)

var (
	serveListen    string
	serveStaticDir string
	serveWorkers   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the statistics API and dashboard",
	Long: `Start the HTTP server. Every statistic is served as JSON under /api,
the dashboard under /, and Prometheus metrics under /metrics.

Example:
  pgedge-tripstats serve --listen 0.0.0.0:3000 --connection "postgres://..."`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"address to listen on (default: 127.0.0.1:3000)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "",
		"directory served under /static")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0,
		"number of query workers (default: 8)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	if serveStaticDir != "" {
		cfg.Server.StaticDir = serveStaticDir
	}
	if serveWorkers > 0 {
		cfg.Workers.Size = serveWorkers
	}

	// Validate configuration
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	window, err := kpiWindow(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	logDataset(ctx, pool)

	exec := executor.New(db.NewPool(pool), executorConfig(cfg))
	defer exec.Close()

	if err := metrics.RegisterPool(pool); err != nil {
		return fmt.Errorf("failed to register pool metrics: %w", err)
	}
	if err := metrics.RegisterQueueDepth(exec.QueueDepth); err != nil {
		return fmt.Errorf("failed to register queue metrics: %w", err)
	}

	handler := api.NewHandler(exec, catalog.All(), window, pool, cfg.Server.IndexTemplate)
	router := api.NewRouter(handler, api.RouterOptions{
		StaticDir:          cfg.Server.StaticDir,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimit:          cfg.Server.RateLimit,
	})
	server := api.NewServer(router, api.ServerOptions{
		Listen:          cfg.Server.Listen,
		ReadTimeout:     seconds(cfg.Server.ReadTimeout),
		WriteTimeout:    seconds(cfg.Server.WriteTimeout),
		ShutdownTimeout: seconds(cfg.Server.ShutdownTimeout),
	})

	logging.Info().
		Str("listen", cfg.Server.Listen).
		Int("workers", cfg.Workers.Size).
		Int("max_conns", cfg.Pool.MaxConns).
		Str("kpi_window", window.String()).
		Int("statistics", len(catalog.List())).
		Msg("Starting trip statistics server")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logging.Info().Msg("Server stopped")
	exec.PrintSummary()
	return nil
}

// connect opens the pool and checks that the database answers.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg.Connection, db.PoolOptions{
		MaxConns: int32(cfg.Pool.MaxConns),
		MinConns: int32(cfg.Pool.MinConns),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func executorConfig(cfg *config.Config) executor.Config {
	return executor.Config{
		Workers:        cfg.Workers.Size,
		QueueSize:      cfg.Workers.QueueSize,
		QueueTimeout:   seconds(cfg.Workers.QueueTimeout),
		AcquireTimeout: seconds(cfg.Pool.AcquireTimeout),
		QueryTimeout:   seconds(cfg.Pool.QueryTimeout),
		ReportInterval: seconds(cfg.Workers.ReportInterval),
	}
}

func kpiWindow(cfg *config.Config) (catalog.Window, error) {
	w, err := catalog.ParseWindow(cfg.KPI.WindowStart, cfg.KPI.WindowEnd, catalog.DefaultWindow)
	if err != nil {
		return catalog.Window{}, fmt.Errorf("invalid kpi window: %w", err)
	}
	return w, nil
}

// logDataset logs how the dataset was generated, when init created it.
func logDataset(ctx context.Context, pool *pgxpool.Pool) {
	exists, err := db.MetadataExists(ctx, pool)
	if err != nil || !exists {
		logging.Debug().Msg("No dataset metadata found")
		return
	}
	metadata, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		logging.Warn().Err(err).Msg("Could not read dataset metadata")
		return
	}
	event := logging.Info()
	for key, value := range metadata {
		event = event.Str(key, value)
	}
	event.Msg("Dataset")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
