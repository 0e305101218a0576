// Package main is the entry point for pgedge-tripstats.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-tripstats/internal/cli"

	// Register statistics computed beyond the catalog's list queries
	_ "github.com/pgEdge/pgedge-tripstats/internal/stats"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
