//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package catalog defines the statistics served by the API: declarative
// query definitions, the SQL builder that renders them and a registry of
// named entries.
package catalog

import (
	"context"

	"github.com/pgEdge/pgedge-tripstats/internal/db"
)

// Task is a unit of database work run on a pooled connection.
type Task func(ctx context.Context, q db.Querier) error

// Runner executes a task on a pooled connection and waits for it.
// *executor.Executor implements it.
type Runner interface {
	Run(ctx context.Context, name string, task Task) error
}

// Params carries request parameters to a statistic.
type Params struct {
	// Window is used by statistics that report Windowed() == true.
	Window Window
}

// Statistic is one entry of the catalog.
type Statistic interface {
	// Name identifies the statistic (e.g. "trip_volume").
	Name() string

	// Path is the HTTP route serving it.
	Path() string

	// Description is a one-line human readable summary.
	Description() string

	// Windowed reports whether the statistic honours Params.Window.
	Windowed() bool

	// Compute runs the statistic and returns its JSON-serializable result.
	Compute(ctx context.Context, r Runner, p Params) (any, error)
}

// APIPath returns the conventional route for a statistic name.
func APIPath(name string) string {
	return "/api/" + name
}
