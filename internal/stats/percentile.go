//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package stats

import "math"

// PercentileCont returns the p-th continuous percentile of an ascending
// sample, interpolating linearly between the two nearest ranks the same way
// PostgreSQL's PERCENTILE_CONT does. An empty sample yields 0. p is clamped
// to [0, 1].
func PercentileCont(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))

	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// PercentChange returns (current - previous) / previous * 100, or 0 when
// there is no positive previous value to compare against.
func PercentChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// PerPeriod divides a trip total evenly across periods. Non-positive
// totals or period counts yield 0.
func PerPeriod(total int64, periods int) float64 {
	if total <= 0 || periods <= 0 {
		return 0
	}
	return float64(total) / float64(periods)
}
