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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-tripstats/internal/models"
)

// MaxWindowMonths bounds the number of calendar months a window may touch.
const MaxWindowMonths = 120

// ErrInvalidWindow is returned for windows that cannot be evaluated.
var ErrInvalidWindow = errors.New("invalid window")

// Window is an inclusive range of calendar days.
type Window struct {
	Start models.Date
	End   models.Date
}

// DefaultWindow is the fourth quarter of 2024.
var DefaultWindow = Window{
	Start: models.NewDate(2024, time.October, 1),
	End:   models.NewDate(2024, time.December, 31),
}

// ParseWindow parses "YYYY-MM-DD" bounds. Empty bounds fall back to def.
// When only one bound is given the other one moves with it so the window
// keeps the month span of def.
func ParseWindow(start, end string, def Window) (Window, error) {
	w := def
	if start != "" {
		d, err := models.ParseDate(start)
		if err != nil {
			return Window{}, fmt.Errorf("%w: start must be YYYY-MM-DD", ErrInvalidWindow)
		}
		w.Start = d
	}
	if end != "" {
		d, err := models.ParseDate(end)
		if err != nil {
			return Window{}, fmt.Errorf("%w: end must be YYYY-MM-DD", ErrInvalidWindow)
		}
		w.End = d
	}

	switch {
	case start != "" && end == "":
		w.End = models.DateOf(addMonths(w.Start, def.Months()).AddDate(0, 0, -1))
	case start == "" && end != "":
		w.Start = addMonths(models.DateOf(w.End.AddDate(0, 0, 1)), -def.Months())
	}

	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks ordering and span.
func (w Window) Validate() error {
	if w.End.Before(w.Start.Time) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidWindow, w.Start, w.End)
	}
	if m := w.Months(); m > MaxWindowMonths {
		return fmt.Errorf("%w: window spans %d months, at most %d allowed",
			ErrInvalidWindow, m, MaxWindowMonths)
	}
	return nil
}

// Months returns the number of calendar months the window touches.
func (w Window) Months() int {
	return (w.End.Year()-w.Start.Year())*12 + int(w.End.Month()) - int(w.Start.Month()) + 1
}

// Previous returns the window covering the same number of months that ends
// the day before w starts.
func (w Window) Previous() Window {
	return Window{
		Start: addMonths(w.Start, -w.Months()),
		End:   models.DateOf(w.Start.AddDate(0, 0, -1)),
	}
}

// Args returns the named arguments used by window filters.
func (w Window) Args() pgx.NamedArgs {
	return pgx.NamedArgs{"start": w.Start, "end": w.End}
}

// String returns the window as "start..end".
func (w Window) String() string {
	return w.Start.String() + ".." + w.End.String()
}

// addMonths shifts d by n months, clamping the day to the target month's
// length.
func addMonths(d models.Date, n int) models.Date {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := min(d.Day(), last)
	return models.NewDate(first.Year(), first.Month(), day)
}
