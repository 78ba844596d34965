package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// File values are layered over defaults; the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies environment variable overrides. Variables follow the naming
// convention CALIBRA_SECTION_FIELD (e.g. CALIBRA_STORAGE_BACKEND) and
// always win over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies CALIBRA_* environment variables to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	setString("CALIBRA_STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("CALIBRA_STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	setInt("CALIBRA_STORAGE_SQLITE_MAX_OPEN_CONNS", &cfg.Storage.SQLite.MaxOpenConns)
	setInt("CALIBRA_STORAGE_SQLITE_MAX_IDLE_CONNS", &cfg.Storage.SQLite.MaxIdleConns)
	setBool("CALIBRA_STORAGE_SQLITE_WAL_MODE", &cfg.Storage.SQLite.WALMode)
	setDuration("CALIBRA_STORAGE_SQLITE_BUSY_TIMEOUT", &cfg.Storage.SQLite.BusyTimeout)

	setString("CALIBRA_CATALOG_PATH", &cfg.Catalog.Path)
	setBool("CALIBRA_CATALOG_WATCH", &cfg.Catalog.Watch)
	setDuration("CALIBRA_CATALOG_DEBOUNCE_INTERVAL", &cfg.Catalog.DebounceInterval)

	setFloat("CALIBRA_SCORING_PARTIAL_CREDIT", &cfg.Scoring.PartialCredit)

	setBool("CALIBRA_HISTORY_ENABLED", &cfg.History.Enabled)
	setString("CALIBRA_HISTORY_PATH", &cfg.History.Path)

	setString("CALIBRA_RECONCILE_SCHEDULE", &cfg.Reconcile.Schedule)

	setString("CALIBRA_LOG_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("CALIBRA_LOG_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("CALIBRA_LOG_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	setBool("CALIBRA_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setString("CALIBRA_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
}

func setString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func setInt(name string, dst *int) {
	if v, ok := os.LookupEnv(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(name string, dst *float64) {
	if v, ok := os.LookupEnv(name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(name string, dst *bool) {
	if v, ok := os.LookupEnv(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(name); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
