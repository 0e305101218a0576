//-------------------------------------------------------------------------
//
// pgEdge Trip Statistics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-tripstats.
// Configuration is loaded from config files, the DATABASE_URL environment
// variable and CLI flags. CLI flags take precedence over everything else.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ConnectionEnv is the environment variable supplying the connection string.
const ConnectionEnv = "DATABASE_URL"

// Config holds all configuration for pgedge-tripstats.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection" validate:"required"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	// LogFormat selects console ("pretty") or JSON ("json") log output.
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=pretty json"`

	// Server holds configuration for the HTTP server.
	Server ServerConfig `mapstructure:"server"`

	// Pool holds connection pool settings.
	Pool PoolConfig `mapstructure:"pool"`

	// Workers holds query executor settings.
	Workers WorkerConfig `mapstructure:"workers"`

	// KPI holds the default KPI trend window.
	KPI KPIConfig `mapstructure:"kpi"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Listen is the host:port the server binds to.
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`

	// StaticDir is served under /static.
	StaticDir string `mapstructure:"static_dir"`

	// IndexTemplate is the HTML page served at /.
	IndexTemplate string `mapstructure:"index_template"`

	// ReadTimeout, WriteTimeout and ShutdownTimeout are in seconds.
	ReadTimeout     int `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    int `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout" validate:"gte=1"`

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// RateLimit is the per-client request budget per minute (0 = unlimited).
	RateLimit int `mapstructure:"rate_limit" validate:"gte=0"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	// MaxConns is the maximum number of database connections.
	MaxConns int `mapstructure:"max_conns" validate:"gte=1"`

	// MinConns is the number of connections kept open when idle.
	MinConns int `mapstructure:"min_conns" validate:"gte=0,ltefield=MaxConns"`

	// AcquireTimeout bounds the wait for a free connection (seconds).
	AcquireTimeout int `mapstructure:"acquire_timeout" validate:"gte=1"`

	// QueryTimeout bounds a single statistic query (seconds).
	QueryTimeout int `mapstructure:"query_timeout" validate:"gte=1"`
}

// WorkerConfig holds query executor settings.
type WorkerConfig struct {
	// Size is the number of query worker goroutines.
	Size int `mapstructure:"size" validate:"gte=1"`

	// QueueSize is the capacity of the pending task queue.
	QueueSize int `mapstructure:"queue_size" validate:"gte=1"`

	// QueueTimeout is how long a task may wait for queue space (seconds).
	QueueTimeout int `mapstructure:"queue_timeout" validate:"gte=1"`

	// ReportInterval is how often to log executor statistics (seconds, 0 = never).
	ReportInterval int `mapstructure:"report_interval" validate:"gte=0"`
}

// KPIConfig holds the default KPI trend window (inclusive, YYYY-MM-DD).
type KPIConfig struct {
	WindowStart string `mapstructure:"window_start" validate:"required,datetime=2006-01-02"`
	WindowEnd   string `mapstructure:"window_end" validate:"required,datetime=2006-01-02"`
}

// InitConfig holds configuration for dataset initialization.
type InitConfig struct {
	// StartDate is the first calendar day of the generated date dimension.
	StartDate string `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`

	// Days is the number of calendar days in the date dimension.
	Days int `mapstructure:"days" validate:"gte=1"`

	// Trips is the number of fact rows to generate.
	Trips int `mapstructure:"trips" validate:"gte=1"`

	// Seed makes generation reproducible (0 = random).
	Seed uint64 `mapstructure:"seed"`

	// Profile is the demand profile shaping pickup times.
	Profile string `mapstructure:"profile" validate:"omitempty,oneof=citywide commuter nightlife"`

	// DropExisting drops existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "pretty",
		Server: ServerConfig{
			Listen:          "127.0.0.1:3000",
			StaticDir:       "static",
			IndexTemplate:   "templates/index.html",
			ReadTimeout:     15,
			WriteTimeout:    60,
			ShutdownTimeout: 10,
		},
		Pool: PoolConfig{
			MaxConns:       10,
			MinConns:       1,
			AcquireTimeout: 5,
			QueryTimeout:   30,
		},
		Workers: WorkerConfig{
			Size:         8,
			QueueSize:    64,
			QueueTimeout: 2,
		},
		KPI: KPIConfig{
			WindowStart: "2024-10-01",
			WindowEnd:   "2024-12-31",
		},
		Init: InitConfig{
			StartDate: "2024-07-01",
			Days:      184,
			Trips:     100000,
			Profile:   "citywide",
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-tripstats.yaml
// 3. ~/.config/pgedge-tripstats/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-tripstats")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-tripstats"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// The connection string is the one setting read from the environment.
	if err := v.BindEnv("connection", ConnectionEnv); err != nil {
		return nil, fmt.Errorf("error binding %s: %w", ConnectionEnv, err)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required (set %s or --connection)", ConnectionEnv)
	}
	if err := validate.StructPartial(c, "Connection", "LogLevel", "LogFormat"); err != nil {
		return describe(err)
	}
	return nil
}

// ValidateServe checks configuration required for the serve command.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c.Server); err != nil {
		return describe(err)
	}
	if err := c.ValidateQuery(); err != nil {
		return err
	}
	return nil
}

// ValidateQuery checks configuration required to run statistics queries.
func (c *Config) ValidateQuery() error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, section := range []any{c.Pool, c.Workers, c.KPI} {
		if err := validate.Struct(section); err != nil {
			return describe(err)
		}
	}
	if c.KPI.WindowEnd < c.KPI.WindowStart {
		return fmt.Errorf("kpi.window_end must not be before kpi.window_start")
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c.Init); err != nil {
		return describe(err)
	}
	return nil
}

// describe turns validator output into a short, flag-oriented message.
func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed '%s=%s'", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
