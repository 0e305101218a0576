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
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-tripstats/internal/datagen/profiles"
)

func TestDateKey(t *testing.T) {
	d := time.Date(2024, 10, 1, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, int32(20241001), DateKey(d))
}

func TestDateRow(t *testing.T) {
	tests := []struct {
		day     time.Time
		isoDay  int32
		weekend bool
		quarter int32
	}{
		{time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC), 1, false, 4},
		{time.Date(2024, 10, 6, 0, 0, 0, 0, time.UTC), 7, true, 4},
		{time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), 6, true, 1},
	}

	for _, tt := range tests {
		row := dateRow(tt.day)
		require.Len(t, row, 10)
		assert.Equal(t, DateKey(tt.day), row[0])
		assert.Equal(t, tt.isoDay, row[5], tt.day.String())
		assert.Equal(t, tt.quarter, row[8], tt.day.String())
		assert.Equal(t, tt.weekend, row[9], tt.day.String())
	}
}

func TestTripIsDeterministic(t *testing.T) {
	start := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	a := NewGenerator(42)
	b := NewGenerator(42)
	for i := int64(1); i <= 50; i++ {
		assert.Equal(t, a.Trip(i, start, end), b.Trip(i, start, end))
	}
}

func TestTripValues(t *testing.T) {
	start := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 92).Add(-time.Second)
	g := NewGenerator(7)

	for i := int64(1); i <= 2000; i++ {
		trip := g.Trip(i, start, end)
		require.Equal(t, i, trip.ID)
		require.Len(t, trip.values(), len(tripColumns))

		if trip.PickupAt != nil {
			day := time.Date(trip.PickupAt.Year(), trip.PickupAt.Month(), trip.PickupAt.Day(), 0, 0, 0, 0, time.UTC)
			assert.False(t, day.Before(start) || day.After(end), "pickup %v out of range", trip.PickupAt)
			require.NotNil(t, trip.PickupDateKey)
			assert.Equal(t, DateKey(*trip.PickupAt), *trip.PickupDateKey)
		}
		if trip.PassengerCount != nil {
			assert.True(t, *trip.PassengerCount >= 1 && *trip.PassengerCount <= 6)
		}
		if trip.FareAmount != nil && trip.TotalAmount != nil {
			assert.GreaterOrEqual(t, *trip.TotalAmount, *trip.FareAmount)
		}
		if trip.VendorKey != nil {
			assert.True(t, *trip.VendorKey >= 1 && int(*trip.VendorKey) <= len(Vendors))
		}
	}
}

func TestTripFollowsProfile(t *testing.T) {
	start := time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5).Add(-time.Second)

	commuter, err := profiles.Get("commuter")
	require.NoError(t, err)
	g := NewGenerator(11).WithProfile(commuter)

	byHour := make(map[int]int)
	for i := int64(1); i <= 5000; i++ {
		trip := g.Trip(i, start, end)
		if trip.PickupAt != nil {
			byHour[trip.PickupAt.Hour()]++
		}
	}
	assert.Greater(t, byHour[8], byHour[3]*3, "rush hour should dominate the night: %v", byHour)
}

func TestTripDurationEncoding(t *testing.T) {
	d := 25 * time.Minute
	trip := Trip{ID: 1, Duration: &d}
	v := trip.values()[len(tripColumns)-1]
	assert.Equal(t, pgtype.Interval{Microseconds: d.Microseconds(), Valid: true}, v)

	trip.Duration = nil
	v = trip.values()[len(tripColumns)-1]
	assert.Equal(t, pgtype.Interval{}, v)
}

func TestReferenceData(t *testing.T) {
	assert.NotEmpty(t, Vendors)
	assert.NotEmpty(t, PaymentTypes)
	assert.NotEmpty(t, RateCodes)
	assert.NotEmpty(t, Locations)
	assert.Len(t, vendorWeights, len(Vendors))
	assert.Len(t, paymentWeights, len(PaymentTypes))
	assert.Len(t, rateCodeWeights, len(RateCodes))
	assert.Equal(t, []string{"fact_trips", "dim_rate_code", "dim_payment_type", "dim_vendor", "dim_location", "dim_date"}, Tables)
}
