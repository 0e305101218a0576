//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse creates the trip star schema and fills it with a
// synthetic dataset.
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by *pgxpool.Pool, *pgxpool.Conn and *pgx.Conn.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Schema SQL for creating the trip warehouse.
const createSchemaSQL = `
-- Calendar days, keyed YYYYMMDD
CREATE TABLE IF NOT EXISTS dim_date (
    date_key    INTEGER PRIMARY KEY,
    full_date   DATE NOT NULL UNIQUE,
    year        INTEGER NOT NULL,
    month       INTEGER NOT NULL,
    day         INTEGER NOT NULL,
    day_of_week INTEGER NOT NULL,
    day_name    VARCHAR(10) NOT NULL,
    month_name  VARCHAR(10) NOT NULL,
    quarter     INTEGER NOT NULL,
    is_weekend  BOOLEAN NOT NULL
);

-- Taxi zones
CREATE TABLE IF NOT EXISTS dim_location (
    location_key INTEGER PRIMARY KEY,
    location_id  INTEGER,
    borough      VARCHAR(255),
    zone         VARCHAR(255),
    service_zone VARCHAR(255)
);

CREATE TABLE IF NOT EXISTS dim_vendor (
    vendor_key  INTEGER PRIMARY KEY,
    vendor_id   INTEGER,
    vendor_name VARCHAR(255)
);

CREATE TABLE IF NOT EXISTS dim_payment_type (
    payment_type_key  INTEGER PRIMARY KEY,
    payment_type_id   INTEGER,
    payment_type_name VARCHAR(255)
);

CREATE TABLE IF NOT EXISTS dim_rate_code (
    rate_code_key  INTEGER PRIMARY KEY,
    rate_code_id   INTEGER,
    rate_code_name VARCHAR(255)
);

-- One row per trip. Dimension keys are nullable and not enforced so that
-- unmapped trips survive loading.
CREATE TABLE IF NOT EXISTS fact_trips (
    trip_id               BIGINT PRIMARY KEY,
    vendor_key            INTEGER,
    pickup_date_key       INTEGER,
    dropoff_date_key      INTEGER,
    pickup_location_key   INTEGER,
    dropoff_location_key  INTEGER,
    rate_code_key         INTEGER,
    payment_type_key      INTEGER,
    store_and_fwd_flag    TEXT,
    tpep_pickup_datetime  TIMESTAMP,
    tpep_dropoff_datetime TIMESTAMP,
    passenger_count       INTEGER,
    trip_distance         DOUBLE PRECISION,
    fare_amount           DOUBLE PRECISION,
    extra                 DOUBLE PRECISION,
    mta_tax               DOUBLE PRECISION,
    tip_amount            DOUBLE PRECISION,
    tolls_amount          DOUBLE PRECISION,
    improvement_surcharge DOUBLE PRECISION,
    total_amount          DOUBLE PRECISION,
    congestion_surcharge  DOUBLE PRECISION,
    airport_fee           DOUBLE PRECISION,
    trip_duration         INTERVAL
);

CREATE INDEX IF NOT EXISTS idx_fact_trips_pickup_date ON fact_trips(pickup_date_key);
CREATE INDEX IF NOT EXISTS idx_fact_trips_pickup_location ON fact_trips(pickup_location_key);
CREATE INDEX IF NOT EXISTS idx_fact_trips_dropoff_location ON fact_trips(dropoff_location_key);
CREATE INDEX IF NOT EXISTS idx_fact_trips_vendor ON fact_trips(vendor_key);
CREATE INDEX IF NOT EXISTS idx_fact_trips_payment_type ON fact_trips(payment_type_key);
CREATE INDEX IF NOT EXISTS idx_fact_trips_rate_code ON fact_trips(rate_code_key);
`

// Drop schema SQL
const dropSchemaSQL = `
DROP TABLE IF EXISTS fact_trips CASCADE;
DROP TABLE IF EXISTS dim_rate_code CASCADE;
DROP TABLE IF EXISTS dim_payment_type CASCADE;
DROP TABLE IF EXISTS dim_vendor CASCADE;
DROP TABLE IF EXISTS dim_location CASCADE;
DROP TABLE IF EXISTS dim_date CASCADE;
`

// Tables lists the warehouse tables, fact table first.
var Tables = []string{
	"fact_trips", "dim_rate_code", "dim_payment_type", "dim_vendor", "dim_location", "dim_date",
}

// CreateSchema creates the warehouse tables and indexes.
func CreateSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the warehouse tables.
func DropSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, dropSchemaSQL)
	return err
}

// Truncate empties every warehouse table.
func Truncate(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, "TRUNCATE "+strings.Join(Tables, ", "))
	return err
}

// HasTrips reports whether fact_trips exists and holds at least one row.
func HasTrips(ctx context.Context, db DB) (bool, error) {
	var exists bool
	if err := db.QueryRow(ctx, "SELECT to_regclass('fact_trips') IS NOT NULL").Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for fact_trips: %w", err)
	}
	if !exists {
		return false, nil
	}

	var hasRows bool
	if err := db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM fact_trips)").Scan(&hasRows); err != nil {
		return false, fmt.Errorf("failed to count trips: %w", err)
	}
	return hasRows, nil
}
