//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package models defines the result shapes returned by the statistics API.
// Field tags double as SQL column aliases (db) and JSON names (json).
package models

// VolumeByDate is one day of the trip volume series.
type VolumeByDate struct {
	Date                   Date    `db:"date" json:"date"`
	TripCount              int64   `db:"trip_count" json:"trip_count"`
	AvgTotalAmount         float64 `db:"avg_total_amount" json:"avg_total_amount"`
	AvgTipAmount           float64 `db:"avg_tip_amount" json:"avg_tip_amount"`
	AvgTripDistance        float64 `db:"avg_trip_distance" json:"avg_trip_distance"`
	AvgTripDurationSeconds float64 `db:"avg_trip_duration_seconds" json:"avg_trip_duration_seconds"`
}

// ByPaymentType aggregates trips per payment type.
type ByPaymentType struct {
	PaymentTypeName string  `db:"payment_type_name" json:"payment_type_name"`
	TripCount       int64   `db:"trip_count" json:"trip_count"`
	AvgTipAmount    float64 `db:"avg_tip_amount" json:"avg_tip_amount"`
}

// ByHourWeekday counts trips per ISO weekday (1=Monday) and hour of day.
type ByHourWeekday struct {
	DayOfWeek int32 `db:"day_of_week" json:"day_of_week"`
	HourOfDay int32 `db:"hour_of_day" json:"hour_of_day"`
	TripCount int64 `db:"trip_count" json:"trip_count"`
}

// ByPassengerCount counts trips per passenger count. A nil count groups
// trips where the count was not recorded.
type ByPassengerCount struct {
	PassengerCount *int32 `db:"passenger_count" json:"passenger_count"`
	TripCount      int64  `db:"trip_count" json:"trip_count"`
}

// FinancialByMonth holds average charges for one calendar month.
type FinancialByMonth struct {
	Date                    Date    `db:"date" json:"date"`
	AvgFareAmount           float64 `db:"avg_fare_amount" json:"avg_fare_amount"`
	AvgTipAmount            float64 `db:"avg_tip_amount" json:"avg_tip_amount"`
	AvgTollsAmount          float64 `db:"avg_tolls_amount" json:"avg_tolls_amount"`
	AvgMtaTax               float64 `db:"avg_mta_tax" json:"avg_mta_tax"`
	AvgImprovementSurcharge float64 `db:"avg_improvement_surcharge" json:"avg_improvement_surcharge"`
	AvgExtra                float64 `db:"avg_extra" json:"avg_extra"`
	AvgTotalAmount          float64 `db:"avg_total_amount" json:"avg_total_amount"`
}

// ByVendor aggregates trips per vendor.
type ByVendor struct {
	VendorName      string  `db:"vendor_name" json:"vendor_name"`
	TripCount       int64   `db:"trip_count" json:"trip_count"`
	AvgTotalAmount  float64 `db:"avg_total_amount" json:"avg_total_amount"`
	AvgTripDistance float64 `db:"avg_trip_distance" json:"avg_trip_distance"`
}

// ByRateCode aggregates trips per rate code.
type ByRateCode struct {
	RateCodeName    string  `db:"rate_code_name" json:"rate_code_name"`
	TripCount       int64   `db:"trip_count" json:"trip_count"`
	AvgTotalAmount  float64 `db:"avg_total_amount" json:"avg_total_amount"`
	AvgTripDistance float64 `db:"avg_trip_distance" json:"avg_trip_distance"`
	AvgTipAmount    float64 `db:"avg_tip_amount" json:"avg_tip_amount"`
}

// DurationDistribution summarizes positive trip durations in seconds.
type DurationDistribution struct {
	AvgDurationSeconds float64 `db:"avg_duration_seconds" json:"avg_duration_seconds"`
	MinDurationSeconds float64 `db:"min_duration_seconds" json:"min_duration_seconds"`
	MaxDurationSeconds float64 `db:"max_duration_seconds" json:"max_duration_seconds"`
	P25DurationSeconds float64 `db:"p25_duration_seconds" json:"p25_duration_seconds"`
	P50DurationSeconds float64 `db:"p50_duration_seconds" json:"p50_duration_seconds"`
	P75DurationSeconds float64 `db:"p75_duration_seconds" json:"p75_duration_seconds"`
}

// FareEfficiency holds the two fare ratios.
type FareEfficiency struct {
	AvgFarePerKm     float64 `db:"avg_fare_per_km" json:"avg_fare_per_km"`
	AvgFarePerMinute float64 `db:"avg_fare_per_minute" json:"avg_fare_per_minute"`
}

// ZoneActivity aggregates trips per pickup location. Location fields are
// nil for trips without a mapped location.
type ZoneActivity struct {
	LocationID     *int32  `db:"location_id" json:"location_id"`
	Zone           *string `db:"zone" json:"zone"`
	Borough        *string `db:"borough" json:"borough"`
	TripCount      int64   `db:"trip_count" json:"trip_count"`
	AvgTotalAmount float64 `db:"avg_total_amount" json:"avg_total_amount"`
}

// BoroughFlow aggregates trips between a pickup and a dropoff borough.
type BoroughFlow struct {
	PickupBorough  string  `db:"pickup_borough" json:"pickup_borough"`
	DropoffBorough string  `db:"dropoff_borough" json:"dropoff_borough"`
	TripCount      int64   `db:"trip_count" json:"trip_count"`
	AvgFareAmount  float64 `db:"avg_fare_amount" json:"avg_fare_amount"`
}

// TrendValue pairs a KPI with its previous-period value and the percentage
// change between them.
type TrendValue struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Trend    float64 `json:"trend"`
}

// KpiTrend holds the dashboard summary tiles.
type KpiTrend struct {
	TotalTrips        TrendValue `json:"total_trips"`
	AvgTripsPerPeriod TrendValue `json:"avg_trips_per_period"`
	MaxTripsPerPeriod TrendValue `json:"max_trips_per_period"`
	AvgAmountOverall  TrendValue `json:"avg_amount_overall"`
}

// PeriodAggregate is an intermediate row used by the KPI calculator: the
// trip count and mean total amount of a window or of one month within it.
type PeriodAggregate struct {
	Date           Date    `db:"date" json:"date"`
	TripCount      int64   `db:"trip_count" json:"trip_count"`
	AvgTotalAmount float64 `db:"avg_total_amount" json:"avg_total_amount"`
}
