//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/pgEdge/pgedge-tripstats/internal/executor"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
)

// ErrSerialization means a computed result could not be encoded.
var ErrSerialization = errors.New("failed to serialize response")

// internalError is the only body clients see for execution failures.
const internalError = "internal server error"

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v before touching w so that an encoding failure can
// still be reported with a proper status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	// errorBody always encodes.
	_ = writeJSON(w, status, errorBody{Error: msg})
}

// errorKind labels an error for logs.
func errorKind(err error) string {
	if errors.Is(err, ErrSerialization) {
		return "serialization"
	}
	return executor.KindName(err)
}

// fail maps a computation error to a response. A client that disconnected
// gets nothing; everything else is a 500 whose details stay in the log.
func fail(w http.ResponseWriter, r *http.Request, statistic string, err error) {
	log := logging.Ctx(r.Context())

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		log.Debug().
			Str("statistic", statistic).
			Msg("Client disconnected before the statistic was ready")
		return
	}

	event := log.Error().
		Err(err).
		Str("statistic", statistic).
		Str("kind", errorKind(err))

	var execErr *executor.Error
	if errors.As(err, &execErr) && execErr.Cause() != nil {
		event = event.AnErr("cause", execErr.Cause())
	}
	event.Msg("Statistic request failed")

	writeError(w, http.StatusInternalServerError, internalError)
}
