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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// windowQuery holds the optional window bounds of a windowed statistic.
type windowQuery struct {
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

// parseWindow reads ?start= and ?end=, falling back to def.
func parseWindow(r *http.Request, def catalog.Window) (catalog.Window, error) {
	q := windowQuery{
		Start: strings.TrimSpace(r.URL.Query().Get("start")),
		End:   strings.TrimSpace(r.URL.Query().Get("end")),
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return catalog.Window{}, fmt.Errorf("%s must be a date in YYYY-MM-DD form",
				strings.ToLower(verrs[0].Field()))
		}
		return catalog.Window{}, err
	}

	w, err := catalog.ParseWindow(q.Start, q.End, def)
	if err != nil {
		return catalog.Window{}, err
	}
	return w, nil
}
