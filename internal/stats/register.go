// Package stats implements the derived-metric calculators: the trip
// duration distribution, fare efficiency and KPI trends, plus the numeric
// helpers they share.
package stats

import "github.com/pgEdge/pgedge-tripstats/internal/catalog"

func init() {
	catalog.Register(DurationStats{})
	catalog.Register(FareEfficiency{})
	catalog.Register(KPITrends{})
}
