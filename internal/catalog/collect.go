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
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-tripstats/internal/db"
)

// CollectList runs def and maps every row onto T by column name. The
// result is never nil so that empty results encode as [].
func CollectList[T any](ctx context.Context, q db.Querier, def Definition, args pgx.NamedArgs) ([]T, error) {
	sql, args := def.Build(args)

	rows, err := q.Query(ctx, sql, QueryArgs(args)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", def.Name, err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", def.Name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// CollectOne runs def, which must produce exactly one row, and maps it
// onto T by column name.
func CollectOne[T any](ctx context.Context, q db.Querier, def Definition, args pgx.NamedArgs) (T, error) {
	sql, args := def.Build(args)

	var zero T
	rows, err := q.Query(ctx, sql, QueryArgs(args)...)
	if err != nil {
		return zero, fmt.Errorf("failed to query %s: %w", def.Name, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, fmt.Errorf("failed to read %s row: %w", def.Name, err)
	}
	return item, nil
}
