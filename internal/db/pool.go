//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the read-only subset of a connection used by statistics.
// *pgxpool.Conn, *pgxpool.Pool and *pgx.Conn all satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a connection checked out of a Pool. Release must be called
// exactly once.
type Conn interface {
	Querier
	Release()
}

// Pool hands out connections.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// PgxPool adapts *pgxpool.Pool to the Pool interface.
type PgxPool struct {
	*pgxpool.Pool
}

// NewPool wraps a pgx connection pool.
func NewPool(p *pgxpool.Pool) *PgxPool {
	return &PgxPool{Pool: p}
}

// Acquire checks out a connection, blocking until one is free or ctx ends.
func (p *PgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
