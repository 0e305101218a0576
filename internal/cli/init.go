//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-tripstats/internal/datagen/profiles"
	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
	"github.com/pgEdge/pgedge-tripstats/internal/models"
	"github.com/pgEdge/pgedge-tripstats/internal/warehouse"
)

var (
	initStartDate    string
	initDays         int
	initTrips        int
	initSeed         uint64
	initProfile      string
	initDropExisting bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the warehouse schema and load a synthetic dataset",
	Long: `Create the trip warehouse star schema and populate it with
reference dimensions, a date dimension and synthetic trips. The dataset
includes the missing and degenerate values real trip feeds carry.

Example:
  pgedge-tripstats init --start-date 2024-07-01 --days 184 --trips 100000`,
	RunE: runInit,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show how the loaded dataset was generated",
	RunE:  runInfo,
}

func init() {
	initCmd.Flags().StringVar(&initStartDate, "start-date", "",
		"first day of the date dimension, YYYY-MM-DD")
	initCmd.Flags().IntVar(&initDays, "days", 0,
		"number of days in the date dimension")
	initCmd.Flags().IntVar(&initTrips, "trips", 0,
		"number of trips to generate")
	initCmd.Flags().Uint64Var(&initSeed, "seed", 0,
		"random seed for reproducible data (0 = random)")
	initCmd.Flags().StringVar(&initProfile, "profile", "",
		"demand profile shaping pickup times (citywide, commuter, nightlife)")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schema before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initStartDate != "" {
		cfg.Init.StartDate = initStartDate
	}
	if initDays > 0 {
		cfg.Init.Days = initDays
	}
	if initTrips > 0 {
		cfg.Init.Trips = initTrips
	}
	if initSeed != 0 {
		cfg.Init.Seed = initSeed
	}
	if initProfile != "" {
		cfg.Init.Profile = initProfile
	}
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	start, err := models.ParseDate(cfg.Init.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	profile, err := profiles.Get(cfg.Init.Profile)
	if err != nil {
		return err
	}

	logging.Info().
		Str("start_date", cfg.Init.StartDate).
		Int("days", cfg.Init.Days).
		Int("trips", cfg.Init.Trips).
		Str("profile", profile.Name()).
		Msg("Initializing database")

	// Connect to database
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Refuse to load on top of an existing dataset
	hasTrips, err := warehouse.HasTrips(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}
	if hasTrips && !cfg.Init.DropExisting {
		return fmt.Errorf("database already contains trips; " +
			"use --drop-existing to reinitialize")
	}

	// Drop existing schema if requested
	if cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	// Create schema
	logging.Info().Msg("Creating schema")
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Generate data
	began := time.Now()
	gen := warehouse.NewGenerator(cfg.Init.Seed).WithProfile(profile)
	err = gen.GenerateData(ctx, pool, warehouse.Options{
		StartDate: start.Time,
		Days:      cfg.Init.Days,
		Trips:     cfg.Init.Trips,
	})
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	// Save metadata
	err = db.SaveMetadata(ctx, pool, db.DatasetInfo{
		StartDate: cfg.Init.StartDate,
		Days:      cfg.Init.Days,
		Trips:     cfg.Init.Trips,
		Seed:      cfg.Init.Seed,
		Profile:   profile.Name(),
	})
	if err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Int("trips", cfg.Init.Trips).
		Dur("elapsed", time.Since(began)).
		Msg("Database initialization complete")

	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, db.PoolOptions{MaxConns: 1})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}
	if !exists {
		return fmt.Errorf("database has not been initialized; run 'pgedge-tripstats init' first")
	}

	metadata, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	for _, key := range keys {
		fmt.Fprintf(out, "%-16s %s\n", key+":", metadata[key])
	}
	return nil
}
