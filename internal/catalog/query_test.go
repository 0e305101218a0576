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
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	def := Definition{
		Name:   "sample",
		Source: FactSource,
		Joins: []Join{
			{Table: "dim_vendor", Alias: "v", On: "f.vendor_key = v.vendor_key"},
		},
		Columns: []Column{
			{Expr: "v.vendor_name", Alias: "vendor_name"},
			{Expr: TripCount, Alias: "trip_count"},
		},
		Filters: []string{"f.fare_amount > 0", "f.trip_distance > @min"},
		GroupBy: []string{"v.vendor_name"},
		OrderBy: []Order{{Expr: TripCount, Desc: true}, {Expr: "v.vendor_name", NullsLast: true}},
		Limit:   5,
	}

	sql, args := def.Build(pgx.NamedArgs{"min": 1})

	want := "SELECT v.vendor_name AS vendor_name, COUNT(f.trip_id)::bigint AS trip_count" +
		" FROM fact_trips f" +
		" LEFT JOIN dim_vendor v ON f.vendor_key = v.vendor_key" +
		" WHERE (f.fare_amount > 0) AND (f.trip_distance > @min)" +
		" GROUP BY v.vendor_name" +
		" ORDER BY COUNT(f.trip_id)::bigint DESC, v.vendor_name ASC NULLS LAST" +
		" LIMIT 5"
	assert.Equal(t, want, sql)
	assert.Equal(t, pgx.NamedArgs{"min": 1}, args)
}

func TestBuildDateSource(t *testing.T) {
	def := Definition{
		Name:    "days",
		Source:  DateSource,
		Columns: []Column{{Expr: "d.full_date", Alias: "date"}},
	}

	sql, args := def.Build(nil)

	assert.Equal(t,
		"SELECT d.full_date AS date FROM dim_date d LEFT JOIN fact_trips f ON f.pickup_date_key = d.date_key",
		sql)
	assert.Nil(t, args)
}

func TestQueryArgs(t *testing.T) {
	assert.Nil(t, QueryArgs(nil))
	assert.Nil(t, QueryArgs(pgx.NamedArgs{}))

	args := QueryArgs(pgx.NamedArgs{"start": 1})
	require.Len(t, args, 1)
	assert.IsType(t, pgx.NamedArgs{}, args[0])
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{Label("pt.payment_type_name"), "COALESCE(NULLIF(TRIM(pt.payment_type_name), ''), 'Unknown')"},
		{Avg("f.tip_amount"), "COALESCE(AVG(f.tip_amount), 0.0)::float8"},
		{Seconds("f.trip_duration"), "EXTRACT(EPOCH FROM f.trip_duration)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}

func TestDefinitions(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Definitions() {
		t.Run(def.Name, func(t *testing.T) {
			assert.False(t, seen[def.Name], "duplicate definition name")
			seen[def.Name] = true

			require.NotEmpty(t, def.Columns)
			sql, _ := def.Build(nil)
			assert.True(t, strings.HasPrefix(sql, "SELECT "))

			for _, c := range def.Columns {
				assert.NotEmpty(t, c.Alias, "column %q has no alias", c.Expr)
			}
		})
	}
}

func TestCountDescendingDefinitionsHaveTieBreak(t *testing.T) {
	for _, def := range Definitions() {
		if len(def.OrderBy) == 0 || def.OrderBy[0].Expr != TripCount {
			continue
		}
		t.Run(def.Name, func(t *testing.T) {
			assert.True(t, def.OrderBy[0].Desc)
			assert.GreaterOrEqual(t, len(def.OrderBy), 2, "missing secondary sort key")
		})
	}
}

func TestDateDrivenDefinitions(t *testing.T) {
	assert.Equal(t, DateSource, tripVolume.Source)
	assert.Equal(t, DateSource, financialBreakdown.Source)
	assert.Equal(t, FactSource, paymentAnalysis.Source)
}

func TestBoroughFlowsFilterAndCap(t *testing.T) {
	sql, _ := boroughFlows.Build(nil)

	assert.Contains(t, sql, "NULLIF(TRIM(pul.borough), '') IS NOT NULL")
	assert.Contains(t, sql, "NULLIF(TRIM(dol.borough), '') IS NOT NULL")
	assert.Contains(t, sql, "TRIM(pul.borough) <> 'Unknown'")
	assert.Contains(t, sql, "TRIM(dol.borough) <> 'Unknown'")
	assert.True(t, strings.HasSuffix(sql, " LIMIT 100"))
	assert.Contains(t, sql, "ORDER BY COUNT(f.trip_id)::bigint DESC, pul.borough ASC, dol.borough ASC")
}

func TestCategoricalEntriesGroupByLabel(t *testing.T) {
	tests := []struct {
		def   Definition
		label string
	}{
		{paymentAnalysis, paymentTypeLabel},
		{vendorAnalysis, vendorLabel},
		{rateCodeAnalysis, rateCodeLabel},
	}

	for _, tt := range tests {
		t.Run(tt.def.Name, func(t *testing.T) {
			require.Len(t, tt.def.GroupBy, 1)
			assert.Equal(t, tt.label, tt.def.GroupBy[0])
			assert.Equal(t, tt.label, tt.def.Columns[0].Expr)
		})
	}
}

func TestHourlyActivityExcludesMissingPickup(t *testing.T) {
	assert.Contains(t, hourlyActivity.Filters, "f.tpep_pickup_datetime IS NOT NULL")
}
