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
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Source selects the driving relation of a query.
type Source int

const (
	// FactSource drives the query from fact_trips (alias f). Only trips
	// contribute rows.
	FactSource Source = iota

	// DateSource drives the query from dim_date (alias d) left joined to
	// fact_trips (alias f) on the pickup date, so days without trips still
	// produce rows with a zero count.
	DateSource
)

// String returns the FROM clause for the source.
func (s Source) String() string {
	switch s {
	case DateSource:
		return "dim_date d LEFT JOIN fact_trips f ON f.pickup_date_key = d.date_key"
	default:
		return "fact_trips f"
	}
}

// Join is a LEFT JOIN against a dimension table.
type Join struct {
	Table string
	Alias string
	On    string
}

// Column is a projected expression and its output name. The alias must
// match the db tag of the result struct field it populates.
type Column struct {
	Expr  string
	Alias string
}

// Order is one ORDER BY key.
type Order struct {
	Expr      string
	Desc      bool
	NullsLast bool
}

// Definition describes one aggregate query declaratively. Every catalog
// entry is rendered by Build so that grouping, ordering and null handling
// follow the same rules across statistics.
type Definition struct {
	Name    string
	Source  Source
	Joins   []Join
	Columns []Column
	// Filters are ANDed together. They may reference named arguments such
	// as @start.
	Filters []string
	GroupBy []string
	OrderBy []Order
	// Limit caps the number of rows. Zero means unlimited.
	Limit int
}

// Build renders the definition to SQL. The named arguments are returned
// unchanged so the pair can be handed straight to Query.
func (d Definition) Build(args pgx.NamedArgs) (string, pgx.NamedArgs) {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	for i, c := range d.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Expr)
		if c.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(c.Alias)
		}
	}

	sb.WriteString(" FROM ")
	sb.WriteString(d.Source.String())
	for _, j := range d.Joins {
		sb.WriteString(" LEFT JOIN ")
		sb.WriteString(j.Table)
		sb.WriteString(" ")
		sb.WriteString(j.Alias)
		sb.WriteString(" ON ")
		sb.WriteString(j.On)
	}

	if len(d.Filters) > 0 {
		sb.WriteString(" WHERE ")
		for i, f := range d.Filters {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString("(")
			sb.WriteString(f)
			sb.WriteString(")")
		}
	}

	if len(d.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(d.GroupBy, ", "))
	}

	if len(d.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range d.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(o.Expr)
			if o.Desc {
				sb.WriteString(" DESC")
			} else {
				sb.WriteString(" ASC")
			}
			if o.NullsLast {
				sb.WriteString(" NULLS LAST")
			}
		}
	}

	if d.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(d.Limit))
	}

	return sb.String(), args
}

// QueryArgs converts named arguments to the variadic form accepted by
// Query. An empty set yields no arguments.
func QueryArgs(args pgx.NamedArgs) []any {
	if len(args) == 0 {
		return nil
	}
	return []any{args}
}

// Label coalesces a categorical expression to a display label. NULL and
// whitespace-only values become "Unknown".
func Label(expr string) string {
	return "COALESCE(NULLIF(TRIM(" + expr + "), ''), '" + UnknownLabel + "')"
}

// Avg averages a measure, skipping NULLs and yielding 0 when nothing
// remains.
func Avg(expr string) string {
	return "COALESCE(AVG(" + expr + "), 0.0)::float8"
}

// Seconds converts an interval expression to seconds.
func Seconds(expr string) string {
	return "EXTRACT(EPOCH FROM " + expr + ")"
}

// UnknownLabel replaces missing categorical values.
const UnknownLabel = "Unknown"

// TripCount counts trips. On date-driven queries days without trips count
// zero because trip_id is NULL there.
const TripCount = "COUNT(f.trip_id)::bigint"
