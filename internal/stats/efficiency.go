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

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/models"
)

// Zero denominators produce NULL ratios which AVG skips.
var efficiencyDefinition = catalog.Definition{
	Name:   "fare_efficiency",
	Source: catalog.FactSource,
	Columns: []catalog.Column{
		{
			Expr:  catalog.Avg("CASE WHEN f.trip_distance > 0 THEN f.fare_amount / f.trip_distance END"),
			Alias: "avg_fare_per_km",
		},
		{
			Expr: catalog.Avg("CASE WHEN " + durationSeconds + " > 0 THEN f.fare_amount / (" +
				durationSeconds + " / 60.0) END"),
			Alias: "avg_fare_per_minute",
		},
	},
}

// FareEfficiency computes fare per kilometre and per minute.
type FareEfficiency struct{}

// Name implements catalog.Statistic.
func (FareEfficiency) Name() string { return efficiencyDefinition.Name }

// Path implements catalog.Statistic.
func (FareEfficiency) Path() string { return catalog.APIPath(efficiencyDefinition.Name) }

// Description implements catalog.Statistic.
func (FareEfficiency) Description() string {
	return "Average fare per kilometre and per minute, skipping zero distances and durations"
}

// Windowed implements catalog.Statistic.
func (FareEfficiency) Windowed() bool { return false }

// Compute implements catalog.Statistic.
func (s FareEfficiency) Compute(ctx context.Context, r catalog.Runner, _ catalog.Params) (any, error) {
	var out models.FareEfficiency
	err := r.Run(ctx, s.Name(), func(ctx context.Context, q db.Querier) error {
		var err error
		out, err = catalog.CollectOne[models.FareEfficiency](ctx, q, efficiencyDefinition, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
