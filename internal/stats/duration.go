//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package stats

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/models"
)

var durationSeconds = catalog.Seconds("f.trip_duration")

func percentileColumn(p float64, alias string) catalog.Column {
	return catalog.Column{
		Expr:  fmt.Sprintf("COALESCE(PERCENTILE_CONT(%.2f) WITHIN GROUP (ORDER BY %s), 0.0)::float8", p, durationSeconds),
		Alias: alias,
	}
}

// durationDefinition summarizes positive trip durations. Aggregates without
// GROUP BY always return one row, so an empty sample comes back as zeros.
var durationDefinition = catalog.Definition{
	Name:   "trip_duration_stats",
	Source: catalog.FactSource,
	Columns: []catalog.Column{
		{Expr: catalog.Avg(durationSeconds), Alias: "avg_duration_seconds"},
		{Expr: "COALESCE(MIN(" + durationSeconds + "), 0.0)::float8", Alias: "min_duration_seconds"},
		{Expr: "COALESCE(MAX(" + durationSeconds + "), 0.0)::float8", Alias: "max_duration_seconds"},
		percentileColumn(0.25, "p25_duration_seconds"),
		percentileColumn(0.50, "p50_duration_seconds"),
		percentileColumn(0.75, "p75_duration_seconds"),
	},
	Filters: []string{
		"f.trip_duration IS NOT NULL",
		durationSeconds + " > 0",
	},
}

// DurationStats computes the trip duration distribution.
type DurationStats struct{}

// Name implements catalog.Statistic.
func (DurationStats) Name() string { return durationDefinition.Name }

// Path implements catalog.Statistic.
func (DurationStats) Path() string { return catalog.APIPath(durationDefinition.Name) }

// Description implements catalog.Statistic.
func (DurationStats) Description() string {
	return "Average, minimum, maximum and quartiles of positive trip durations in seconds"
}

// Windowed implements catalog.Statistic.
func (DurationStats) Windowed() bool { return false }

// Compute implements catalog.Statistic.
func (s DurationStats) Compute(ctx context.Context, r catalog.Runner, _ catalog.Params) (any, error) {
	var out models.DurationDistribution
	err := r.Run(ctx, s.Name(), func(ctx context.Context, q db.Querier) error {
		var err error
		out, err = catalog.CollectOne[models.DurationDistribution](ctx, q, durationDefinition, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
