package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/pgEdge/pgedge-tripstats/internal/models"
)

type failingRunner struct {
	err   error
	names []string
}

func (r *failingRunner) Run(_ context.Context, name string, _ Task) error {
	r.names = append(r.names, name)
	return r.err
}

func TestRegistryHasListEntries(t *testing.T) {
	for _, def := range Definitions() {
		s, err := Get(def.Name)
		if err != nil {
			t.Fatalf("Expected %s to be registered: %v", def.Name, err)
		}
		if s.Path() != "/api/"+def.Name {
			t.Errorf("Expected path /api/%s, got %s", def.Name, s.Path())
		}
		if s.Description() == "" {
			t.Errorf("Expected description for %s", def.Name)
		}
		if s.Windowed() {
			t.Errorf("Expected %s not to be windowed", def.Name)
		}
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	if _, err := Get("no_such_statistic"); err == nil {
		t.Error("Expected error for unknown statistic")
	}
}

func TestRegistryListSorted(t *testing.T) {
	names := List()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Expected sorted names, got %v", names)
			break
		}
	}

	all := All()
	if len(all) != len(names) {
		t.Fatalf("Expected %d statistics, got %d", len(names), len(all))
	}
	for i, s := range all {
		if s.Name() != names[i] {
			t.Errorf("Expected %s at %d, got %s", names[i], i, s.Name())
		}
	}
}

func TestListEntryPropagatesRunnerError(t *testing.T) {
	sentinel := errors.New("pool exhausted")
	r := &failingRunner{err: sentinel}
	entry := NewListEntry[models.ByVendor](vendorAnalysis, "vendors")

	got, err := entry.Compute(context.Background(), r, Params{})
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected runner error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil result, got %v", got)
	}
	if len(r.names) != 1 || r.names[0] != "vendor_analysis" {
		t.Errorf("Expected one task named vendor_analysis, got %v", r.names)
	}
}
