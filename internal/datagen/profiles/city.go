//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package profiles

import (
	"math"
	"time"
)

// Citywide simulates round-the-clock demand in a large city.
// Minimum activity: 30% (never drops below)
// Morning peak: 7AM - 10AM
// Evening peak: 4PM - 8PM
// Quiet hours: 3AM - 5AM (20% reduction)
// Weekend: 85% of weekday
type Citywide struct{}

// NewCitywide creates a new Citywide profile.
func NewCitywide() Profile {
	return Citywide{}
}

func (Citywide) Name() string {
	return "citywide"
}

func (Citywide) Description() string {
	return "Round-the-clock city demand with morning and evening peaks"
}

func (Citywide) ActivityLevel(t time.Time) float64 {
	hour := t.Hour()

	weekendFactor := 1.0
	if isWeekend(t) {
		weekendFactor = 0.85
	}

	combined := math.Max(peakContribution(hour, 7, 10), peakContribution(hour, 16, 20))

	if hour >= 3 && hour < 5 {
		combined *= 0.80
	}

	// Scale to range [0.30, 1.0]
	activity := 0.30 + 0.70*combined

	return activity * weekendFactor
}

// Commuter simulates demand driven by office commutes.
// Morning rush: 7AM - 9AM
// Evening rush: 5PM - 7PM
// Daytime: 9AM - 5PM (50% of peak)
// Evening: 7PM - 11PM (ramp down from 60% to 20%)
// Night: 11PM - 6AM (5% of peak)
// Weekend: flat 35% during the day, 10% at night
type Commuter struct{}

// NewCommuter creates a new Commuter profile.
func NewCommuter() Profile {
	return Commuter{}
}

func (Commuter) Name() string {
	return "commuter"
}

func (Commuter) Description() string {
	return "Weekday commute peaks, quiet weekends"
}

func (Commuter) ActivityLevel(t time.Time) float64 {
	hour := t.Hour()
	decimalHour := float64(hour) + float64(t.Minute())/60.0

	if isWeekend(t) {
		if hour >= 9 && hour < 22 {
			return 0.35
		}
		return 0.10
	}

	switch {
	case hour >= 23 || hour < 6:
		return 0.05
	case hour == 6:
		// Ramp up from 5% to 100% before the rush
		return 0.05 + 0.95*(decimalHour-6.0)
	case hour >= 7 && hour < 9:
		return 1.0
	case hour >= 9 && hour < 17:
		return 0.50
	case hour >= 17 && hour < 19:
		return 1.0
	default:
		// 7PM - 11PM
		progress := (decimalHour - 19.0) / 4.0
		return 0.60 - 0.40*progress
	}
}

// Nightlife simulates demand dominated by evenings out.
// Morning: 6AM - 12PM (40% of peak)
// Afternoon: 12PM - 5PM (60% of peak)
// Evening peak: 5PM - 10PM (100%)
// Late night: 10PM - 2AM (80%)
// Night: 2AM - 6AM (15%)
// Weekend: 120% of weekday
type Nightlife struct{}

// NewNightlife creates a new Nightlife profile.
func NewNightlife() Profile {
	return Nightlife{}
}

func (Nightlife) Name() string {
	return "nightlife"
}

func (Nightlife) Description() string {
	return "Evening and late-night peaks, busier weekends"
}

func (Nightlife) ActivityLevel(t time.Time) float64 {
	hour := t.Hour()

	var base float64
	switch {
	case hour >= 2 && hour < 6:
		base = 0.15
	case hour >= 6 && hour < 12:
		base = 0.40
	case hour >= 12 && hour < 17:
		base = 0.60
	case hour >= 17 && hour < 22:
		base = 1.0
	default:
		// 10PM - 2AM
		base = 0.80
	}

	if isWeekend(t) {
		base *= 1.20
	}

	return base
}

// peakContribution returns a value between 0 and 1 based on whether
// the hour falls within peak hours. Includes ramp-up and ramp-down.
func peakContribution(hour, peakStart, peakEnd int) float64 {
	if hour >= peakStart && hour < peakEnd {
		return 1.0
	}

	// Ramp up hour before peak
	if hour == peakStart-1 {
		return 0.5
	}

	// Ramp down hour after peak
	if hour == peakEnd {
		return 0.5
	}

	return 0.0
}
