package config

import "time"

// Config is the root configuration structure for Calibra.
type Config struct {
	// Storage selects and configures the persistence backend.
	Storage StorageConfig `yaml:"storage"`

	// Catalog locates the SLIPTA question catalog.
	Catalog CatalogConfig `yaml:"catalog"`

	// Scoring configures score derivation.
	Scoring ScoringConfig `yaml:"scoring"`

	// History configures the frozen-score snapshot ledger.
	History HistoryConfig `yaml:"history"`

	// Reconcile configures the scheduled star-level reconciler.
	Reconcile ReconcileConfig `yaml:"reconcile"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig configures the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/audits.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// CatalogConfig locates the question catalog.
type CatalogConfig struct {
	// Path is the catalog YAML file.
	// Default: "slipta-catalog.yaml"
	Path string `yaml:"path"`

	// Watch reloads the catalog when the file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the reload debounce for the watcher.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// ScoringConfig configures score derivation.
type ScoringConfig struct {
	// PartialCredit is the fraction of a question's weight earned by a P
	// answer, in [0, 1]. The SLIPTA rubric does not fix this value, so it
	// is explicit configuration rather than a constant.
	// Default: 0
	PartialCredit float64 `yaml:"partial_credit"`
}

// HistoryConfig configures the snapshot ledger.
type HistoryConfig struct {
	// Enabled turns snapshot recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the ledger database file.
	// Default: "data/history.db"
	Path string `yaml:"path"`
}

// ReconcileConfig configures the scheduled reconciler.
type ReconcileConfig struct {
	// Schedule is a standard cron expression. Empty disables the sweep.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus namespace.
	// Default: "calibra"
	Namespace string `yaml:"namespace"`
}
