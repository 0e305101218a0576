//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-tripstats.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-tripstats/internal/catalog"
	"github.com/pgEdge/pgedge-tripstats/internal/config"
	"github.com/pgEdge/pgedge-tripstats/internal/datagen/profiles"
	"github.com/pgEdge/pgedge-tripstats/internal/logging"
	"github.com/pgEdge/pgedge-tripstats/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-tripstats",
		Short: "Trip statistics service for a taxi trip warehouse",
		Long: `pgedge-tripstats serves aggregate statistics over a PostgreSQL star
schema of taxi trips as JSON, together with a small dashboard.

The warehouse is read-only to the service. Use 'pgedge-tripstats init'
to create the schema and load a synthetic dataset for testing.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-tripstats.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string (default: $"+config.ConnectionEnv+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (pretty, json)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statisticsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(profilesCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogFormat != "json",
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var statisticsCmd = &cobra.Command{
	Use:   "statistics",
	Short: "List available statistics",
	Long: `List all statistics served under /api. Windowed statistics accept
start and end dates.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available statistics:")
		cmd.Println()
		for _, s := range catalog.All() {
			suffix := ""
			if s.Windowed() {
				suffix = " [start, end]"
			}
			cmd.Printf("  %-22s %s%s\n", s.Name(), s.Description(), suffix)
		}
		cmd.Println()
		cmd.Println("Use 'pgedge-tripstats query <statistic>' to run one.")
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available demand profiles",
	Long: `List the demand profiles 'init' can use to shape when synthetic
trips are picked up.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available demand profiles:")
		cmd.Println()
		for _, name := range profiles.List() {
			p, _ := profiles.Get(name)
			cmd.Printf("  %-10s - %s\n", name, p.Description())
		}
		cmd.Println()
		cmd.Printf("The default is %s.\n", profiles.DefaultProfile)
	},
}
