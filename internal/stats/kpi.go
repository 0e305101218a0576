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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
	"github.com/pgEdge/pgedge-tripstats/internal/models"
)

const (
	windowFilter = "d.full_date BETWEEN @start AND @end"
	monthStart   = "DATE_TRUNC('month', d.full_date)::date"
)

// kpiTotalDefinition aggregates every trip in the window. It is dated at the
// latest day of the window, falling back to the latest known day and then
// to today when dim_date has no rows in range.
var kpiTotalDefinition = catalog.Definition{
	Name:   "kpi_trends.total",
	Source: catalog.DateSource,
	Columns: []catalog.Column{
		{Expr: "COALESCE(MAX(d.full_date), (SELECT MAX(full_date) FROM dim_date), CURRENT_DATE)::date", Alias: "date"},
		{Expr: catalog.TripCount, Alias: "trip_count"},
		{Expr: catalog.Avg("f.total_amount"), Alias: "avg_total_amount"},
	},
	Filters: []string{windowFilter},
}

// kpiPeakDefinition returns the busiest month of the window, the earliest
// one on ties.
var kpiPeakDefinition = catalog.Definition{
	Name:   "kpi_trends.peak",
	Source: catalog.DateSource,
	Columns: []catalog.Column{
		{Expr: monthStart, Alias: "date"},
		{Expr: catalog.TripCount, Alias: "trip_count"},
		{Expr: catalog.Avg("f.total_amount"), Alias: "avg_total_amount"},
	},
	Filters: []string{windowFilter},
	GroupBy: []string{monthStart},
	OrderBy: []catalog.Order{
		{Expr: catalog.TripCount, Desc: true},
		{Expr: monthStart},
	},
	Limit: 1,
}

// PeriodSummary holds the aggregates of one window.
type PeriodSummary struct {
	Total models.PeriodAggregate
	Peak  models.PeriodAggregate
}

// Trend combines the current and previous window summaries. periods and
// previousPeriods are the calendar months each window touches; they differ
// by one when the window does not start on the first of a month.
func Trend(current, previous PeriodSummary, periods, previousPeriods int) models.KpiTrend {
	trend := func(cur, prev float64) models.TrendValue {
		return models.TrendValue{Current: cur, Previous: prev, Trend: PercentChange(cur, prev)}
	}

	return models.KpiTrend{
		TotalTrips: trend(float64(current.Total.TripCount), float64(previous.Total.TripCount)),
		AvgTripsPerPeriod: trend(
			PerPeriod(current.Total.TripCount, periods),
			PerPeriod(previous.Total.TripCount, previousPeriods)),
		MaxTripsPerPeriod: trend(float64(current.Peak.TripCount), float64(previous.Peak.TripCount)),
		AvgAmountOverall:  trend(current.Total.AvgTotalAmount, previous.Total.AvgTotalAmount),
	}
}

// KPITrends computes the dashboard summary tiles for a window and the
// window of equal month span preceding it.
type KPITrends struct {
	// Now is the clock used for the synthetic peak row. Defaults to
	// time.Now.
	Now func() time.Time
}

// Name implements catalog.Statistic.
func (KPITrends) Name() string { return "kpi_trends" }

// Path implements catalog.Statistic.
func (k KPITrends) Path() string { return catalog.APIPath(k.Name()) }

// Description implements catalog.Statistic.
func (KPITrends) Description() string {
	return "Trip totals, per-month averages, peak month and average amount against the previous window"
}

// Windowed implements catalog.Statistic.
func (KPITrends) Windowed() bool { return true }

// Compute implements catalog.Statistic. The four sub-queries run as
// independent tasks and are combined once all of them succeed.
func (k KPITrends) Compute(ctx context.Context, r catalog.Runner, p catalog.Params) (any, error) {
	window := p.Window
	if window.Start.IsZero() || window.End.IsZero() {
		window = catalog.DefaultWindow
	}
	previousWindow := window.Previous()
	periods := window.Months()

	var current, previous PeriodSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return k.aggregate(gctx, r, kpiTotalDefinition, window, &current.Total)
	})
	g.Go(func() error {
		return k.peak(gctx, r, window, &current.Peak)
	})
	g.Go(func() error {
		return k.aggregate(gctx, r, kpiTotalDefinition, previousWindow, &previous.Total)
	})
	g.Go(func() error {
		return k.peak(gctx, r, previousWindow, &previous.Peak)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("window", window.String()).
		Str("previous_window", previousWindow.String()).
		Int("periods", periods).
		Int64("current_trips", current.Total.TripCount).
		Int64("previous_trips", previous.Total.TripCount).
		Msg("Computed KPI trends")

	return Trend(current, previous, periods, previousWindow.Months()), nil
}

func (k KPITrends) aggregate(ctx context.Context, r catalog.Runner, def catalog.Definition,
	w catalog.Window, out *models.PeriodAggregate) error {
	return r.Run(ctx, def.Name, func(ctx context.Context, q db.Querier) error {
		row, err := catalog.CollectOne[models.PeriodAggregate](ctx, q, def, w.Args())
		if err != nil {
			return err
		}
		*out = row
		return nil
	})
}

func (k KPITrends) peak(ctx context.Context, r catalog.Runner, w catalog.Window,
	out *models.PeriodAggregate) error {
	return r.Run(ctx, kpiPeakDefinition.Name, func(ctx context.Context, q db.Querier) error {
		rows, err := catalog.CollectList[models.PeriodAggregate](ctx, q, kpiPeakDefinition, w.Args())
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			*out = k.emptyPeak()
			return nil
		}
		*out = rows[0]
		return nil
	})
}

func (k KPITrends) emptyPeak() models.PeriodAggregate {
	now := time.Now
	if k.Now != nil {
		now = k.Now
	}
	t := now()
	return models.PeriodAggregate{Date: models.NewDate(t.Year(), t.Month(), 1)}
}
