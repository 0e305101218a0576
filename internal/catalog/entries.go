//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"context"

	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/models"
)

// BoroughFlowLimit caps the number of borough pairs returned.
const BoroughFlowLimit = 100

// Category labels shared by definitions. Categorical entries group by the
// coalesced label, so missing dimension rows and NULL names merge.
var (
	paymentTypeLabel = Label("pt.payment_type_name")
	rateCodeLabel    = Label("rc.rate_code_name")
	vendorLabel      = "COALESCE(NULLIF(TRIM(v.vendor_name), ''), 'Vendor ' || v.vendor_key::text, '" + UnknownLabel + "')"
	isoWeekday       = "EXTRACT(ISODOW FROM f.tpep_pickup_datetime)::int4"
	hourOfDay        = "EXTRACT(HOUR FROM f.tpep_pickup_datetime)::int4"
	monthStart       = "DATE_TRUNC('month', d.full_date)::date"
)

var (
	tripVolume = Definition{
		Name:   "trip_volume",
		Source: DateSource,
		Columns: []Column{
			{Expr: "d.full_date", Alias: "date"},
			{Expr: TripCount, Alias: "trip_count"},
			{Expr: Avg("f.total_amount"), Alias: "avg_total_amount"},
			{Expr: Avg("f.tip_amount"), Alias: "avg_tip_amount"},
			{Expr: Avg("f.trip_distance"), Alias: "avg_trip_distance"},
			{Expr: Avg(Seconds("f.trip_duration")), Alias: "avg_trip_duration_seconds"},
		},
		GroupBy: []string{"d.full_date"},
		OrderBy: []Order{{Expr: "d.full_date"}},
	}

	paymentAnalysis = Definition{
		Name:   "payment_analysis",
		Source: FactSource,
		Joins: []Join{
			{Table: "dim_payment_type", Alias: "pt", On: "f.payment_type_key = pt.payment_type_key"},
		},
		Columns: []Column{
			{Expr: paymentTypeLabel, Alias: "payment_type_name"},
			{Expr: TripCount, Alias: "trip_count"},
			{Expr: Avg("f.tip_amount"), Alias: "avg_tip_amount"},
		},
		GroupBy: []string{paymentTypeLabel},
		OrderBy: []Order{{Expr: TripCount, Desc: true}, {Expr: paymentTypeLabel}},
	}

	hourlyActivity = Definition{
		Name:   "hourly_activity",
		Source: FactSource,
		Columns: []Column{
			{Expr: isoWeekday, Alias: "day_of_week"},
			{Expr: hourOfDay, Alias: "hour_of_day"},
			{Expr: TripCount, Alias: "trip_count"},
		},
		Filters: []string{"f.tpep_pickup_datetime IS NOT NULL"},
		GroupBy: []string{isoWeekday, hourOfDay},
		OrderBy: []Order{{Expr: isoWeekday}, {Expr: hourOfDay}},
	}

	passengerAnalysis = Definition{
		Name:   "passenger_analysis",
		Source: FactSource,
		Columns: []Column{
			{Expr: "f.passenger_count", Alias: "passenger_count"},
			{Expr: TripCount, Alias: "trip_count"},
		},
		GroupBy: []string{"f.passenger_count"},
		OrderBy: []Order{{Expr: "f.passenger_count", NullsLast: true}},
	}

	financialBreakdown = Definition{
		Name:   "financial_breakdown",
		Source: DateSource,
		Columns: []Column{
			{Expr: monthStart, Alias: "date"},
			{Expr: Avg("f.fare_amount"), Alias: "avg_fare_amount"},
			{Expr: Avg("f.tip_amount"), Alias: "avg_tip_amount"},
			{Expr: Avg("f.tolls_amount"), Alias: "avg_tolls_amount"},
			{Expr: Avg("f.mta_tax"), Alias: "avg_mta_tax"},
			{Expr: Avg("f.improvement_surcharge"), Alias: "avg_improvement_surcharge"},
			{Expr: Avg("f.extra"), Alias: "avg_extra"},
			{Expr: Avg("f.total_amount"), Alias: "avg_total_amount"},
		},
		GroupBy: []string{monthStart},
		OrderBy: []Order{{Expr: monthStart}},
	}

	vendorAnalysis = Definition{
		Name:   "vendor_analysis",
		Source: FactSource,
		Joins: []Join{
			{Table: "dim_vendor", Alias: "v", On: "f.vendor_key = v.vendor_key"},
		},
		Columns: []Column{
			{Expr: vendorLabel, Alias: "vendor_name"},
			{Expr: TripCount, Alias: "trip_count"},
			{Expr: Avg("f.total_amount"), Alias: "avg_total_amount"},
			{Expr: Avg("f.trip_distance"), Alias: "avg_trip_distance"},
		},
		GroupBy: []string{vendorLabel},
		OrderBy: []Order{{Expr: TripCount, Desc: true}, {Expr: vendorLabel}},
	}

	rateCodeAnalysis = Definition{
		Name:   "rate_code_analysis",
		Source: FactSource,
		Joins: []Join{
			{Table: "dim_rate_code", Alias: "rc", On: "f.rate_code_key = rc.rate_code_key"},
		},
		Columns: []Column{
			{Expr: rateCodeLabel, Alias: "rate_code_name"},
			{Expr: TripCount, Alias: "trip_count"},
			{Expr: Avg("f.total_amount"), Alias: "avg_total_amount"},
			{Expr: Avg("f.trip_distance"), Alias: "avg_trip_distance"},
			{Expr: Avg("f.tip_amount"), Alias: "avg_tip_amount"},
		},
		GroupBy: []string{rateCodeLabel},
		OrderBy: []Order{{Expr: TripCount, Desc: true}, {Expr: rateCodeLabel}},
	}

	zoneActivity = Definition{
		Name:   "zone_activity",
		Source: FactSource,
		Joins: []Join{
			{Table: "dim_location", Alias: "loc", On: "f.pickup_location_key = loc.location_key"},
		},
		Columns: []Column{
			{Expr: "loc.location_id", Alias: "location_id"},
			{Expr: "loc.zone", Alias: "zone"},
			{Expr: "loc.borough", Alias: "borough"},
			{Expr: TripCount, Alias: "trip_count"},
			{Expr: Avg("f.total_amount"), Alias: "avg_total_amount"},
		},
		GroupBy: []string{"loc.location_id", "loc.zone", "loc.borough"},
		OrderBy: []Order{
			{Expr: TripCount, Desc: true},
			{Expr: "loc.location_id", NullsLast: true},
			{Expr: "loc.zone", NullsLast: true},
			{Expr: "loc.borough", NullsLast: true},
		},
	}

	boroughFlows = Definition{
		Name:   "borough_flows",
		Source: FactSource,
		Joins: []Join{
			{Table: "dim_location", Alias: "pul", On: "f.pickup_location_key = pul.location_key"},
			{Table: "dim_location", Alias: "dol", On: "f.dropoff_location_key = dol.location_key"},
		},
		Columns: []Column{
			{Expr: "pul.borough", Alias: "pickup_borough"},
			{Expr: "dol.borough", Alias: "dropoff_borough"},
			{Expr: TripCount, Alias: "trip_count"},
			{Expr: Avg("f.fare_amount"), Alias: "avg_fare_amount"},
		},
		Filters: []string{
			"NULLIF(TRIM(pul.borough), '') IS NOT NULL",
			"NULLIF(TRIM(dol.borough), '') IS NOT NULL",
			"TRIM(pul.borough) <> '" + UnknownLabel + "'",
			"TRIM(dol.borough) <> '" + UnknownLabel + "'",
		},
		GroupBy: []string{"pul.borough", "dol.borough"},
		OrderBy: []Order{
			{Expr: TripCount, Desc: true},
			{Expr: "pul.borough"},
			{Expr: "dol.borough"},
		},
		Limit: BoroughFlowLimit,
	}
)

// ListEntry is a statistic whose result is the full row set of one
// definition, mapped onto T.
type ListEntry[T any] struct {
	Definition Definition
	Summary    string
}

// NewListEntry returns a list statistic for def.
func NewListEntry[T any](def Definition, description string) *ListEntry[T] {
	return &ListEntry[T]{Definition: def, Summary: description}
}

// Name implements Statistic.
func (e *ListEntry[T]) Name() string { return e.Definition.Name }

// Path implements Statistic.
func (e *ListEntry[T]) Path() string { return APIPath(e.Definition.Name) }

// Description implements Statistic.
func (e *ListEntry[T]) Description() string { return e.Summary }

// Windowed implements Statistic.
func (e *ListEntry[T]) Windowed() bool { return false }

// Compute implements Statistic.
func (e *ListEntry[T]) Compute(ctx context.Context, r Runner, _ Params) (any, error) {
	var items []T
	err := r.Run(ctx, e.Definition.Name, func(ctx context.Context, q db.Querier) error {
		var err error
		items, err = CollectList[T](ctx, q, e.Definition, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Definitions returns the list definitions in registration order.
func Definitions() []Definition {
	return []Definition{
		tripVolume, paymentAnalysis, hourlyActivity, passengerAnalysis,
		financialBreakdown, vendorAnalysis, rateCodeAnalysis, zoneActivity,
		boroughFlows,
	}
}

func init() {
	Register(NewListEntry[models.VolumeByDate](tripVolume,
		"Daily trip count and average charges, one row per calendar day"))
	Register(NewListEntry[models.ByPaymentType](paymentAnalysis,
		"Trip count and average tip per payment type"))
	Register(NewListEntry[models.ByHourWeekday](hourlyActivity,
		"Trip count per ISO weekday and pickup hour"))
	Register(NewListEntry[models.ByPassengerCount](passengerAnalysis,
		"Trip count per passenger count"))
	Register(NewListEntry[models.FinancialByMonth](financialBreakdown,
		"Average fare components per calendar month"))
	Register(NewListEntry[models.ByVendor](vendorAnalysis,
		"Trip count, average total and distance per vendor"))
	Register(NewListEntry[models.ByRateCode](rateCodeAnalysis,
		"Trip count and average charges per rate code"))
	Register(NewListEntry[models.ZoneActivity](zoneActivity,
		"Trip count and average total per pickup zone"))
	Register(NewListEntry[models.BoroughFlow](boroughFlows,
		"Top pickup to dropoff borough pairs by trip count"))
}
