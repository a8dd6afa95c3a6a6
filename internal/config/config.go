// Package config provides Viper-based configuration loading for the TCGFun
// simulator and its tools.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TCGFUN_DATABASE_HOST.
const EnvPrefix = "TCGFUN"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulatorConfig holds simulator service settings.
type SimulatorConfig struct {
	// GRPCHost is the bind address for the simulator gRPC service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the simulator gRPC service.
	GRPCPort int `mapstructure:"grpc_port"`
	// MetricsPort serves Prometheus metrics; 0 disables the listener.
	MetricsPort int `mapstructure:"metrics_port"`
	// SlotRetries bounds weighted re-picks for pool slots whose rarity has no cards.
	SlotRetries int `mapstructure:"slot_retries"`
	// RecordCollection adds every opened card to the requesting owner's collection.
	RecordCollection bool `mapstructure:"record_collection"`
	// DefaultOwner is used when a request names no collection owner.
	DefaultOwner string `mapstructure:"default_owner"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s SimulatorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.GRPCHost, s.GRPCPort)
}

// MetricsAddr returns the ":port" metrics listen address.
func (s SimulatorConfig) MetricsAddr() string {
	return fmt.Sprintf(":%d", s.MetricsPort)
}

// ContentConfig locates YAML content.
type ContentConfig struct {
	// SetsDir holds one YAML file per card set.
	SetsDir string `mapstructure:"sets_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Content   ContentConfig   `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	errs = append(errs, validateDatabase(c.Database)...)
	errs = append(errs, validateLogging(c.Logging)...)
	errs = append(errs, validateSimulator(c.Simulator)...)
	if c.Content.SetsDir == "" {
		errs = append(errs, "content.sets_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

func validateDatabase(d DatabaseConfig) []string {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if !validPort(d.Port) {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return errs
}

func validateLogging(l LoggingConfig) []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errs
}

func validateSimulator(s SimulatorConfig) []string {
	var errs []string
	if s.GRPCHost == "" {
		errs = append(errs, "simulator.grpc_host must not be empty")
	}
	if !validPort(s.GRPCPort) {
		errs = append(errs, fmt.Sprintf("simulator.grpc_port must be 1-65535, got %d", s.GRPCPort))
	}
	if s.MetricsPort != 0 && !validPort(s.MetricsPort) {
		errs = append(errs, fmt.Sprintf("simulator.metrics_port must be 0 or 1-65535, got %d", s.MetricsPort))
	}
	if s.MetricsPort != 0 && s.MetricsPort == s.GRPCPort {
		errs = append(errs, "simulator.metrics_port must differ from simulator.grpc_port")
	}
	if s.SlotRetries < 1 {
		errs = append(errs, fmt.Sprintf("simulator.slot_retries must be >= 1, got %d", s.SlotRetries))
	}
	if s.RecordCollection && s.DefaultOwner == "" {
		errs = append(errs, "simulator.default_owner must not be empty when record_collection is set")
	}
	return errs
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and TCGFUN_ environment
// overrides applied but no config file.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tcgfun")
	v.SetDefault("database.password", "tcgfun")
	v.SetDefault("database.name", "tcgfun")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulator.grpc_host", "127.0.0.1")
	v.SetDefault("simulator.grpc_port", 50061)
	v.SetDefault("simulator.metrics_port", 9108)
	v.SetDefault("simulator.slot_retries", 3)
	v.SetDefault("simulator.record_collection", false)
	v.SetDefault("simulator.default_owner", "local")

	v.SetDefault("content.sets_dir", "content/sets")
}
