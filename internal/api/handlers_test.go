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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/executor"
	"github.com/pgEdge/pgedge-tripstats/internal/models"
)

type nopRunner struct{}

func (nopRunner) Run(context.Context, string, catalog.Task) error { return nil }

// fakeStatistic returns a canned result and records the params it saw.
type fakeStatistic struct {
	name     string
	windowed bool
	result   any
	err      error
	seen     *catalog.Params
}

func (f *fakeStatistic) Name() string        { return f.name }
func (f *fakeStatistic) Path() string        { return catalog.APIPath(f.name) }
func (f *fakeStatistic) Description() string { return "fake " + f.name }
func (f *fakeStatistic) Windowed() bool      { return f.windowed }

func (f *fakeStatistic) Compute(ctx context.Context, _ catalog.Runner, p catalog.Params) (any, error) {
	if f.seen != nil {
		*f.seen = p
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type badValue struct{}

func (badValue) MarshalJSON() ([]byte, error) {
	return nil, errors.New("cannot encode")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, stats ...catalog.Statistic) http.Handler {
	t.Helper()
	h := NewHandler(nopRunner{}, stats, catalog.DefaultWindow, fakePinger{}, "")
	return NewRouter(h, RouterOptions{})
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatisticSuccess(t *testing.T) {
	stat := &fakeStatistic{
		name: "vendor_analysis",
		result: []models.ByVendor{
			{VendorName: "Creative Mobile", TripCount: 2, AvgTotalAmount: 15.5, AvgTripDistance: 3},
		},
	}
	rec := get(t, newTestRouter(t, stat), "/api/vendor_analysis")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.JSONEq(t,
		`[{"vendor_name":"Creative Mobile","trip_count":2,"avg_total_amount":15.5,"avg_trip_distance":3}]`,
		rec.Body.String())
}

func TestStatisticEmptyListIsArray(t *testing.T) {
	stat := &fakeStatistic{name: "borough_flows", result: []models.BoroughFlow{}}
	rec := get(t, newTestRouter(t, stat), "/api/borough_flows")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestStatisticErrorsMapTo500(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"pool exhausted", &executor.Error{Kind: executor.ErrPoolExhausted, Statistic: "trip_volume"}},
		{"pool timeout", &executor.Error{Kind: executor.ErrPoolTimeout, Statistic: "trip_volume"}},
		{"query", &executor.Error{Kind: executor.ErrQuery, Statistic: "trip_volume"}},
		{"worker", &executor.Error{Kind: executor.ErrWorkerJoin, Statistic: "trip_volume"}},
		{"plain", errors.New(`pq: relation "fact_trips" does not exist`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat := &fakeStatistic{name: "trip_volume", err: tt.err}
			rec := get(t, newTestRouter(t, stat), "/api/trip_volume")

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "fact_trips")
		})
	}
}

func TestStatisticSerializationFailure(t *testing.T) {
	stat := &fakeStatistic{name: "fare_efficiency", result: badValue{}}
	rec := get(t, newTestRouter(t, stat), "/api/fare_efficiency")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestStatisticClientGone(t *testing.T) {
	stat := &fakeStatistic{name: "zone_activity", err: context.Canceled}
	h := NewHandler(nopRunner{}, []catalog.Statistic{stat}, catalog.DefaultWindow, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/zone_activity", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Statistic(stat).ServeHTTP(rec, req)

	assert.Empty(t, rec.Body.String())
}

func TestWindowedStatisticParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantWindow string
	}{
		{"defaults", "", http.StatusOK, "2024-10-01..2024-12-31"},
		{"explicit", "?start=2024-01-01&end=2024-03-31", http.StatusOK, "2024-01-01..2024-03-31"},
		{"start only", "?start=2025-01-01", http.StatusOK, "2025-01-01..2025-03-31"},
		{"end only", "?end=2024-09-30", http.StatusOK, "2024-07-01..2024-09-30"},
		{"bad start", "?start=01-01-2024", http.StatusBadRequest, ""},
		{"bad end", "?end=soon", http.StatusBadRequest, ""},
		{"reversed", "?start=2024-12-01&end=2024-11-01", http.StatusBadRequest, ""},
		{"too long", "?start=2000-01-01&end=2024-12-31", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen catalog.Params
			stat := &fakeStatistic{name: "kpi_trends", windowed: true, result: models.KpiTrend{}, seen: &seen}
			rec := get(t, newTestRouter(t, stat), "/api/kpi_trends"+tt.query)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				var body errorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Error)
				return
			}
			assert.Equal(t, tt.wantWindow, seen.Window.String())
		})
	}
}

func TestUnwindowedStatisticIgnoresParams(t *testing.T) {
	stat := &fakeStatistic{name: "trip_volume", result: []models.VolumeByDate{}}
	rec := get(t, newTestRouter(t, stat), "/api/trip_volume?start=garbage")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListStatistics(t *testing.T) {
	router := newTestRouter(t,
		&fakeStatistic{name: "kpi_trends", windowed: true},
		&fakeStatistic{name: "trip_volume"},
	)
	rec := get(t, router, "/api/statistics")

	require.Equal(t, http.StatusOK, rec.Code)
	var infos []statisticInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "/api/kpi_trends", infos[0].Path)
	assert.True(t, infos[0].Windowed)
	assert.Equal(t, "trip_volume", infos[1].Name)
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestHealth(t *testing.T) {
	ok := NewRouter(NewHandler(nopRunner{}, nil, catalog.DefaultWindow, fakePinger{}, ""), RouterOptions{})
	rec := get(t, ok, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := NewRouter(NewHandler(nopRunner{}, nil, catalog.DefaultWindow,
		fakePinger{err: errors.New("connection refused")}, ""), RouterOptions{})
	rec = get(t, down, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestIndexAndStatic(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(index, []byte("<html>dashboard</html>"), 0o644))
	staticDir := filepath.Join(dir, "static")
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "js", "chart.js"), []byte("// chart"), 0o644))

	h := NewHandler(nopRunner{}, nil, catalog.DefaultWindow, nil, index)
	router := NewRouter(h, RouterOptions{StaticDir: staticDir})

	rec := get(t, router, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>dashboard</html>", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	rec = get(t, router, "/static/js/chart.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "// chart", rec.Body.String())
}

func TestIndexMissing(t *testing.T) {
	h := NewHandler(nopRunner{}, nil, catalog.DefaultWindow, nil, filepath.Join(t.TempDir(), "missing.html"))
	rec := get(t, NewRouter(h, RouterOptions{}), "/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard unavailable")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeStatistic{name: "trip_volume", result: []models.VolumeByDate{}})
	get(t, router, "/api/trip_volume")

	rec := get(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tripstats_api_requests_total")
}

func TestCORS(t *testing.T) {
	h := NewHandler(nopRunner{}, nil, catalog.DefaultWindow, nil, "")
	router := NewRouter(h, RouterOptions{CORSAllowedOrigins: []string{"http://dashboard.local"}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := NewHandler(nopRunner{}, nil, catalog.DefaultWindow, nil, "")
	router := NewRouter(h, RouterOptions{RateLimit: 2})

	var last int
	for i := 0; i < 3; i++ {
		last = get(t, router, "/api/statistics").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
