//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordQuery(t *testing.T) {
	before := testutil.ToFloat64(QueryErrors.WithLabelValues("unit_stat", "query"))

	RecordQuery("unit_stat", "", 10*time.Millisecond)
	RecordQuery("unit_stat", "query", 20*time.Millisecond)

	after := testutil.ToFloat64(QueryErrors.WithLabelValues("unit_stat", "query"))
	if after-before != 1 {
		t.Errorf("Expected one recorded error, got %v", after-before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/unit", "500")
	before := testutil.ToFloat64(c)

	RecordAPIRequest("GET", "/api/unit", 500, time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("Expected counter to grow by 1, got %v", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("Expected %v active requests, got %v", before+1, got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("Expected %v active requests, got %v", before, got)
	}
}

func TestRegisterQueueDepthTwice(t *testing.T) {
	depth := func() int { return 3 }
	if err := RegisterQueueDepth(depth); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	if err := RegisterQueueDepth(depth); err != nil {
		t.Errorf("Expected second registration to be a no-op, got %v", err)
	}
}
