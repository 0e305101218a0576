//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/db"
	"github.com/pgEdge/pgedge-tripstats/internal/executor"
)

var (
	queryStart string
	queryEnd   string
)

var queryCmd = &cobra.Command{
	Use:   "query <statistic>",
	Short: "Compute one statistic and print it as JSON",
	Long: `Compute one statistic against the warehouse and print the same JSON
document the API would return.

Example:
  pgedge-tripstats query kpi_trends --start 2024-10-01 --end 2024-12-31`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeStatistics,
	RunE:              runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryStart, "start", "",
		"window start date, YYYY-MM-DD (windowed statistics only)")
	queryCmd.Flags().StringVar(&queryEnd, "end", "",
		"window end date, YYYY-MM-DD (windowed statistics only)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateQuery(); err != nil {
		return err
	}

	stat, err := catalog.Get(args[0])
	if err != nil {
		return err
	}

	def, err := kpiWindow(cfg)
	if err != nil {
		return err
	}
	window, err := catalog.ParseWindow(queryStart, queryEnd, def)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	exec := executor.New(db.NewPool(pool), executorConfig(cfg))
	defer exec.Close()

	result, err := stat.Compute(ctx, exec, catalog.Params{Window: window})
	if err != nil {
		return fmt.Errorf("failed to compute %s: %w", stat.Name(), err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", stat.Name(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func completeStatistics(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return catalog.List(), cobra.ShellCompDirectiveNoFileComp
}
