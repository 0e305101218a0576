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
	"net/http"
	"os"
	"time"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
)

// Pinger checks database reachability. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the statistics API.
type Handler struct {
	runner        catalog.Runner
	statistics    []catalog.Statistic
	defaultWindow catalog.Window
	health        Pinger
	indexTemplate string
}

// NewHandler creates a handler serving the given statistics.
func NewHandler(runner catalog.Runner, statistics []catalog.Statistic, defaultWindow catalog.Window,
	health Pinger, indexTemplate string) *Handler {
	return &Handler{
		runner:        runner,
		statistics:    statistics,
		defaultWindow: defaultWindow,
		health:        health,
		indexTemplate: indexTemplate,
	}
}

// Statistic returns the handler for one catalog entry.
func (h *Handler) Statistic(s catalog.Statistic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params catalog.Params
		if s.Windowed() {
			window, err := parseWindow(r, h.defaultWindow)
			if err != nil {
				logging.Ctx(r.Context()).Debug().
					Err(err).
					Str("statistic", s.Name()).
					Msg("Rejected statistic parameters")
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			params.Window = window
		}

		start := time.Now()
		result, err := s.Compute(r.Context(), h.runner, params)
		if err != nil {
			fail(w, r, s.Name(), err)
			return
		}

		if err := writeJSON(w, http.StatusOK, result); err != nil {
			fail(w, r, s.Name(), err)
			return
		}

		logging.Ctx(r.Context()).Debug().
			Str("statistic", s.Name()).
			Dur("duration", time.Since(start)).
			Msg("Served statistic")
	}
}

type statisticInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Windowed    bool   `json:"windowed"`
}

// List describes every served statistic.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	infos := make([]statisticInfo, 0, len(h.statistics))
	for _, s := range h.statistics {
		infos = append(infos, statisticInfo{
			Name:        s.Name(),
			Path:        s.Path(),
			Description: s.Description(),
			Windowed:    s.Windowed(),
		})
	}
	if err := writeJSON(w, http.StatusOK, infos); err != nil {
		fail(w, r, "statistics", err)
	}
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
		_ = writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const indexUnavailable = `<!DOCTYPE html>
<html><head><title>Trip Statistics</title></head>
<body><h1>Dashboard unavailable</h1><p>The dashboard page could not be loaded.</p></body></html>
`

// Index serves the dashboard page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(h.indexTemplate)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("path", h.indexTemplate).
			Msg("Failed to read dashboard page")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(indexUnavailable))
		return
	}
	_, _ = w.Write(page)
}
