//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package executor

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	// ErrPoolExhausted means no capacity was available: the task queue
	// stayed full, the executor is closed, or the pool refused a
	// connection.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrPoolTimeout means no connection became free before the acquire
	// deadline.
	ErrPoolTimeout = errors.New("timed out waiting for a connection")

	// ErrQuery means the database rejected or failed the statement, or the
	// result could not be mapped.
	ErrQuery = errors.New("query failed")

	// ErrWorkerJoin means the task panicked on its worker.
	ErrWorkerJoin = errors.New("worker task failed")
)

// Error is a failed task. Unwrap exposes only the kind; the underlying
// cause is available through Cause for logging.
type Error struct {
	Kind      error
	Statistic string
	cause     error
}

func newError(kind error, statistic string, cause error) *Error {
	return &Error{Kind: kind, Statistic: statistic, cause: cause}
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Statistic, e.Kind)
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Cause returns the underlying error, which may carry driver details that
// must not reach clients.
func (e *Error) Cause() error {
	return e.cause
}

// KindName returns a short label for the error kind, used in logs and
// metrics.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrPoolExhausted):
		return "pool_exhausted"
	case errors.Is(err, ErrPoolTimeout):
		return "pool_timeout"
	case errors.Is(err, ErrQuery):
		return "query"
	case errors.Is(err, ErrWorkerJoin):
		return "worker_join"
	default:
		return "unknown"
	}
}
