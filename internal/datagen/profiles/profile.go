//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package profiles implements demand profiles that shape when synthetic
// trips are picked up.
package profiles

import (
	"fmt"
	"sort"
	"time"
)

// MaxActivity is the highest level any profile returns.
const MaxActivity = 1.2

// DefaultProfile is used when none is configured.
const DefaultProfile = "citywide"

// Profile defines the interface for demand profiles.
type Profile interface {
	// Name returns the profile name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// ActivityLevel returns the relative pickup demand at t, between 0 and
	// MaxActivity. Hours and weekdays are read in t's location.
	ActivityLevel(t time.Time) float64
}

var registry = make(map[string]func() Profile)

// Register adds a profile constructor to the registry.
func Register(name string, constructor func() Profile) {
	registry[name] = constructor
}

// Get retrieves a profile by name. An empty name selects DefaultProfile.
func Get(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return constructor(), nil
}

// List returns all registered profile names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isWeekend(t time.Time) bool {
	weekday := t.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

func init() {
	Register("citywide", NewCitywide)
	Register("commuter", NewCommuter)
	Register("nightlife", NewNightlife)
}
