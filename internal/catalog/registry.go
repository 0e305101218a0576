package catalog

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Statistic)
	mu       sync.RWMutex
)

// Register adds a statistic to the registry.
func Register(s Statistic) {
	mu.Lock()
	defer mu.Unlock()
	registry[s.Name()] = s
}

// Get retrieves a statistic by name.
func Get(name string) (Statistic, error) {
	mu.RLock()
	defer mu.RUnlock()

	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown statistic: %s", name)
	}
	return s, nil
}

// List returns all registered statistic names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered statistics sorted by name.
func All() []Statistic {
	mu.RLock()
	defer mu.RUnlock()

	stats := make([]Statistic, 0, len(registry))
	for _, s := range registry {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Name() < stats[j].Name()
	})
	return stats
}
