//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgEdge/pgedge-tripstats/internal/datagen"
	"github.com/pgEdge/pgedge-tripstats/internal/datagen/profiles"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
)

// Trip is a fact_trips row. Nil fields are stored as NULL.
type Trip struct {
	ID                   int64
	VendorKey            *int32
	PickupDateKey        *int32
	DropoffDateKey       *int32
	PickupLocationKey    *int32
	DropoffLocationKey   *int32
	RateCodeKey          *int32
	PaymentTypeKey       *int32
	StoreAndFwdFlag      *string
	PickupAt             *time.Time
	DropoffAt            *time.Time
	PassengerCount       *int32
	TripDistance         *float64
	FareAmount           *float64
	Extra                *float64
	MTATax               *float64
	TipAmount            *float64
	TollsAmount          *float64
	ImprovementSurcharge *float64
	TotalAmount          *float64
	CongestionSurcharge  *float64
	AirportFee           *float64
	Duration             *time.Duration
}

var tripColumns = []string{
	"trip_id", "vendor_key", "pickup_date_key", "dropoff_date_key",
	"pickup_location_key", "dropoff_location_key", "rate_code_key", "payment_type_key",
	"store_and_fwd_flag", "tpep_pickup_datetime", "tpep_dropoff_datetime", "passenger_count",
	"trip_distance", "fare_amount", "extra", "mta_tax", "tip_amount", "tolls_amount",
	"improvement_surcharge", "total_amount", "congestion_surcharge", "airport_fee", "trip_duration",
}

func (t Trip) values() []any {
	var duration pgtype.Interval
	if t.Duration != nil {
		duration = pgtype.Interval{Microseconds: t.Duration.Microseconds(), Valid: true}
	}
	return []any{
		t.ID, t.VendorKey, t.PickupDateKey, t.DropoffDateKey,
		t.PickupLocationKey, t.DropoffLocationKey, t.RateCodeKey, t.PaymentTypeKey,
		t.StoreAndFwdFlag, t.PickupAt, t.DropoffAt, t.PassengerCount,
		t.TripDistance, t.FareAmount, t.Extra, t.MTATax, t.TipAmount, t.TollsAmount,
		t.ImprovementSurcharge, t.TotalAmount, t.CongestionSurcharge, t.AirportFee, duration,
	}
}

// InsertTrips bulk loads trips with COPY.
func InsertTrips(ctx context.Context, db DB, trips []Trip) error {
	rows := make([][]any, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, t.values())
	}
	return copyRows(ctx, db, "fact_trips", tripColumns, rows)
}

// Options controls dataset generation.
type Options struct {
	// StartDate is the first day of the date dimension.
	StartDate time.Time

	// Days is the number of days in the date dimension. Trips are spread
	// over all of them.
	Days int

	// Trips is the number of fact rows to generate.
	Trips int
}

// Generator generates the synthetic trip dataset.
type Generator struct {
	faker   *datagen.Faker
	cfg     datagen.BatchInsertConfig
	profile profiles.Profile
}

// NewGenerator creates a generator using the default demand profile. A zero
// seed picks a random one.
func NewGenerator(seed uint64) *Generator {
	faker := datagen.NewFaker()
	if seed != 0 {
		faker = datagen.NewFakerWithSeed(seed)
	}
	profile, _ := profiles.Get(profiles.DefaultProfile)
	return &Generator{
		faker:   faker,
		cfg:     datagen.DefaultBatchConfig(),
		profile: profile,
	}
}

// WithProfile sets the demand profile that shapes pickup times.
func (g *Generator) WithProfile(p profiles.Profile) *Generator {
	g.profile = p
	return g
}

// GenerateData loads reference dimensions, the date dimension and opts.Trips
// trips.
func (g *Generator) GenerateData(ctx context.Context, db DB, opts Options) error {
	if opts.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", opts.Days)
	}

	logging.Info().
		Str("profile", g.profile.Name()).
		Str("start_date", opts.StartDate.Format(time.DateOnly)).
		Int("days", opts.Days).
		Int("trips", opts.Trips).
		Msg("Generating trip data")

	if err := LoadReference(ctx, db); err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	if err := LoadDates(ctx, db, opts.StartDate, opts.Days); err != nil {
		return fmt.Errorf("failed to load dates: %w", err)
	}
	if err := g.generateTrips(ctx, db, opts); err != nil {
		return fmt.Errorf("failed to generate trips: %w", err)
	}
	return nil
}

func (g *Generator) generateTrips(ctx context.Context, db DB, opts Options) error {
	batch := make([]Trip, 0, g.cfg.BatchSize)
	progress := datagen.NewProgressReporter("fact_trips", int64(opts.Trips), g.cfg.ProgressInterval)

	start := time.Date(opts.StartDate.Year(), opts.StartDate.Month(), opts.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, opts.Days).Add(-time.Second)

	for i := 1; i <= opts.Trips; i++ {
		batch = append(batch, g.Trip(int64(i), start, end))

		if len(batch) >= g.cfg.BatchSize {
			if err := InsertTrips(ctx, db, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := InsertTrips(ctx, db, batch); err != nil {
			return err
		}
		progress.Update(int64(len(batch)))
	}
	progress.Done()
	return nil
}

// maxPickupAttempts bounds rejection sampling against the demand profile.
const maxPickupAttempts = 32

var passengerCounts = []int32{1, 2, 3, 4, 5, 6}
var passengerWeights = []int{70, 15, 5, 4, 4, 2}

var paymentWeights = []int{60, 30, 3, 2, 1, 4}
var rateCodeWeights = []int{90, 4, 1, 1, 2, 1, 1}
var vendorWeights = []int{45, 45, 6, 4}

// Trip generates one trip picked up between start and end. A small share
// of trips carry NULL or degenerate values: missing dimensions, zero
// distance, non-positive durations.
func (g *Generator) Trip(id int64, start, end time.Time) Trip {
	f := g.faker

	pickup := g.pickupTime(start, end)

	distance := f.Amount(0.3, 18)
	if f.Float64(0, 1) < 0.01 {
		distance = 0
	}
	// Roughly 12 mph in town plus some noise.
	seconds := int(distance/12*3600) + f.Int(120, 900)

	t := Trip{
		ID:                   id,
		StoreAndFwdFlag:      ptr(datagen.ChooseWeighted(f, []string{"N", "Y"}, []int{98, 2})),
		TripDistance:         ptr(distance),
		MTATax:               ptr(0.5),
		ImprovementSurcharge: ptr(1.0),
	}

	vendor := datagen.ChooseWeighted(f, Vendors, vendorWeights)
	payment := datagen.ChooseWeighted(f, PaymentTypes, paymentWeights)
	rate := datagen.ChooseWeighted(f, RateCodes, rateCodeWeights)
	t.VendorKey = datagen.Nullable(f, vendor.Key, 0.01)
	t.PaymentTypeKey = datagen.Nullable(f, payment.Key, 0.01)
	t.RateCodeKey = datagen.Nullable(f, rate.Key, 0.01)
	t.PickupLocationKey = datagen.Nullable(f, datagen.Choose(f, Locations).Key, 0.01)
	t.DropoffLocationKey = datagen.Nullable(f, datagen.Choose(f, Locations).Key, 0.01)
	t.PassengerCount = datagen.Nullable(f, datagen.ChooseWeighted(f, passengerCounts, passengerWeights), 0.03)

	fare := datagen.RoundCents(3 + 2.5*distance/1.609 + 0.5*float64(seconds)/60)
	extra := datagen.Choose(f, []float64{0, 0, 0.5, 1, 2.5})
	tip := 0.0
	if payment.Key == 1 {
		tip = datagen.RoundCents(fare * f.Float64(0.1, 0.3))
	}
	tolls := 0.0
	if rate.Key == 2 || rate.Key == 3 {
		tolls = 6.94
	}
	congestion := datagen.Choose(f, []float64{0, 2.5, 2.5})
	airport := 0.0
	if rate.Key == 2 {
		airport = 1.75
	}
	total := datagen.RoundCents(fare + extra + 0.5 + tip + tolls + 1 + congestion + airport)

	t.FareAmount = datagen.Nullable(f, fare, 0.005)
	t.Extra = ptr(extra)
	t.TipAmount = ptr(tip)
	t.TollsAmount = ptr(tolls)
	t.CongestionSurcharge = ptr(congestion)
	t.AirportFee = ptr(airport)
	t.TotalAmount = datagen.Nullable(f, total, 0.005)

	duration := time.Duration(seconds) * time.Second
	switch r := f.Float64(0, 1); {
	case r < 0.01:
		duration = 0
	case r < 0.015:
		duration = -duration
	}
	dropoff := pickup.Add(duration)

	if f.Float64(0, 1) >= 0.005 {
		t.PickupAt = ptr(pickup)
		t.PickupDateKey = ptr(DateKey(pickup))
	}
	t.DropoffAt = ptr(dropoff)
	t.DropoffDateKey = ptr(DateKey(dropoff))
	t.Duration = datagen.Nullable(f, duration, 0.02)

	return t
}

// pickupTime draws a time between start and end, accepting it with
// probability proportional to the profile's activity level.
func (g *Generator) pickupTime(start, end time.Time) time.Time {
	f := g.faker
	var t time.Time
	for i := 0; i < maxPickupAttempts; i++ {
		t = f.DateRange(start, end).UTC().Truncate(time.Second)
		if f.Float64(0, profiles.MaxActivity) <= g.profile.ActivityLevel(t) {
			break
		}
	}
	return t
}
