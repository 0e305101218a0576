//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Vendor is a dim_vendor row.
type Vendor struct {
	Key  int32
	ID   *int32
	Name *string
}

// PaymentType is a dim_payment_type row.
type PaymentType struct {
	Key  int32
	ID   *int32
	Name *string
}

// RateCode is a dim_rate_code row.
type RateCode struct {
	Key  int32
	ID   *int32
	Name *string
}

// Location is a dim_location row.
type Location struct {
	Key         int32
	ID          *int32
	Borough     *string
	Zone        *string
	ServiceZone *string
}

func ptr[T any](v T) *T { return &v }

// Reference data. A few rows carry missing or blank names so that label
// coalescing has something to do.
var (
	Vendors = []Vendor{
		{Key: 1, ID: ptr[int32](1), Name: ptr("Creative Mobile Technologies")},
		{Key: 2, ID: ptr[int32](2), Name: ptr("VeriFone Inc.")},
		{Key: 3, ID: ptr[int32](6), Name: nil},
		{Key: 4, ID: ptr[int32](7), Name: ptr("  ")},
	}

	PaymentTypes = []PaymentType{
		{Key: 1, ID: ptr[int32](1), Name: ptr("Credit card")},
		{Key: 2, ID: ptr[int32](2), Name: ptr("Cash")},
		{Key: 3, ID: ptr[int32](3), Name: ptr("No charge")},
		{Key: 4, ID: ptr[int32](4), Name: ptr("Dispute")},
		{Key: 5, ID: ptr[int32](6), Name: ptr("Voided trip")},
		{Key: 6, ID: ptr[int32](5), Name: nil},
	}

	RateCodes = []RateCode{
		{Key: 1, ID: ptr[int32](1), Name: ptr("Standard rate")},
		{Key: 2, ID: ptr[int32](2), Name: ptr("JFK")},
		{Key: 3, ID: ptr[int32](3), Name: ptr("Newark")},
		{Key: 4, ID: ptr[int32](4), Name: ptr("Nassau or Westchester")},
		{Key: 5, ID: ptr[int32](5), Name: ptr("Negotiated fare")},
		{Key: 6, ID: ptr[int32](6), Name: ptr("Group ride")},
		{Key: 7, ID: ptr[int32](99), Name: nil},
	}

	Locations = []Location{
		location(1, 1, "EWR", "Newark Airport", "EWR"),
		location(2, 4, "Manhattan", "Alphabet City", "Yellow Zone"),
		location(3, 43, "Manhattan", "Central Park", "Yellow Zone"),
		location(4, 48, "Manhattan", "Clinton East", "Yellow Zone"),
		location(5, 79, "Manhattan", "East Village", "Yellow Zone"),
		location(6, 132, "Queens", "JFK Airport", "Airports"),
		location(7, 138, "Queens", "LaGuardia Airport", "Airports"),
		location(8, 161, "Manhattan", "Midtown Center", "Yellow Zone"),
		location(9, 181, "Brooklyn", "Park Slope", "Boro Zone"),
		location(10, 230, "Manhattan", "Times Sq/Theatre District", "Yellow Zone"),
		location(11, 236, "Manhattan", "Upper East Side North", "Yellow Zone"),
		location(12, 255, "Brooklyn", "Williamsburg (North Side)", "Boro Zone"),
		location(13, 7, "Queens", "Astoria", "Boro Zone"),
		location(14, 69, "Bronx", "East Concourse/Concourse Village", "Boro Zone"),
		location(15, 5, "Staten Island", "Arden Heights", "Boro Zone"),
		location(16, 264, "Unknown", "NV", ""),
		{Key: 17, ID: ptr[int32](265)},
	}
)

func location(key, id int32, borough, zone, serviceZone string) Location {
	return Location{Key: key, ID: ptr(id), Borough: ptr(borough), Zone: ptr(zone), ServiceZone: ptr(serviceZone)}
}

// LoadReference inserts the dimension rows other than dim_date.
func LoadReference(ctx context.Context, db DB) error {
	vendorRows := make([][]any, 0, len(Vendors))
	for _, v := range Vendors {
		vendorRows = append(vendorRows, []any{v.Key, v.ID, v.Name})
	}
	if err := copyRows(ctx, db, "dim_vendor",
		[]string{"vendor_key", "vendor_id", "vendor_name"}, vendorRows); err != nil {
		return err
	}

	paymentRows := make([][]any, 0, len(PaymentTypes))
	for _, p := range PaymentTypes {
		paymentRows = append(paymentRows, []any{p.Key, p.ID, p.Name})
	}
	if err := copyRows(ctx, db, "dim_payment_type",
		[]string{"payment_type_key", "payment_type_id", "payment_type_name"}, paymentRows); err != nil {
		return err
	}

	rateRows := make([][]any, 0, len(RateCodes))
	for _, r := range RateCodes {
		rateRows = append(rateRows, []any{r.Key, r.ID, r.Name})
	}
	if err := copyRows(ctx, db, "dim_rate_code",
		[]string{"rate_code_key", "rate_code_id", "rate_code_name"}, rateRows); err != nil {
		return err
	}

	locationRows := make([][]any, 0, len(Locations))
	for _, l := range Locations {
		locationRows = append(locationRows, []any{l.Key, l.ID, l.Borough, l.Zone, l.ServiceZone})
	}
	return copyRows(ctx, db, "dim_location",
		[]string{"location_key", "location_id", "borough", "zone", "service_zone"}, locationRows)
}

// DateKey returns the YYYYMMDD key of t's calendar day.
func DateKey(t time.Time) int32 {
	return int32(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// dateRow builds one dim_date row. day_of_week is ISO (Monday = 1).
func dateRow(d time.Time) []any {
	isoDay := int32(d.Weekday())
	if isoDay == 0 {
		isoDay = 7
	}
	return []any{
		DateKey(d),
		d,
		int32(d.Year()),
		int32(d.Month()),
		int32(d.Day()),
		isoDay,
		d.Weekday().String(),
		d.Month().String(),
		int32((int(d.Month())-1)/3 + 1),
		isoDay >= 6,
	}
}

// LoadDates inserts days consecutive calendar days starting at start.
func LoadDates(ctx context.Context, db DB, start time.Time, days int) error {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	rows := make([][]any, 0, days)
	for i := 0; i < days; i++ {
		rows = append(rows, dateRow(start.AddDate(0, 0, i)))
	}
	return copyRows(ctx, db, "dim_date", []string{
		"date_key", "full_date", "year", "month", "day", "day_of_week",
		"day_name", "month_name", "quarter", "is_weekend",
	}, rows)
}

func copyRows(ctx context.Context, db DB, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := db.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to load %s: %w", table, err)
	}
	return nil
}
