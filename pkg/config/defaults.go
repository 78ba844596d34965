package config

import "time"

// Default values for configuration fields.
const (
	// Storage defaults
	DefaultStorageBackend     = "sqlite"
	DefaultSQLitePath         = "data/audits.db"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteMaxIdleConns = 5
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second

	// Catalog defaults
	DefaultCatalogPath             = "slipta-catalog.yaml"
	DefaultCatalogWatch            = false
	DefaultCatalogDebounceInterval = 100 * time.Millisecond

	// Scoring defaults
	DefaultPartialCredit = 0.0

	// History defaults
	DefaultHistoryEnabled = true
	DefaultHistoryPath    = "data/history.db"

	// Reconcile defaults
	DefaultReconcileSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "calibra"
)

// Default returns a fully-populated configuration. Load unmarshals file
// values over it, so explicit false values survive while unset booleans
// keep their defaults.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: DefaultStorageBackend,
			SQLite: SQLiteConfig{
				Path:         DefaultSQLitePath,
				MaxOpenConns: DefaultSQLiteMaxOpenConns,
				MaxIdleConns: DefaultSQLiteMaxIdleConns,
				WALMode:      DefaultSQLiteWALMode,
				BusyTimeout:  DefaultSQLiteBusyTimeout,
			},
		},
		Catalog: CatalogConfig{
			Path:             DefaultCatalogPath,
			Watch:            DefaultCatalogWatch,
			DebounceInterval: DefaultCatalogDebounceInterval,
		},
		Scoring: ScoringConfig{
			PartialCredit: DefaultPartialCredit,
		},
		History: HistoryConfig{
			Enabled: DefaultHistoryEnabled,
			Path:    DefaultHistoryPath,
		},
		Reconcile: ReconcileConfig{
			Schedule: DefaultReconcileSchedule,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
			},
			Metrics: MetricsConfig{
				Enabled:   DefaultMetricsEnabled,
				Namespace: DefaultMetricsNamespace,
			},
		},
	}
}

// ApplyDefaults fills unset non-boolean fields on a programmatically built
// configuration. Boolean defaults come from Default(); a zero bool here is
// indistinguishable from an explicit false and is left alone.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.MaxOpenConns == 0 {
		cfg.Storage.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Storage.SQLite.MaxIdleConns == 0 {
		cfg.Storage.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.DebounceInterval == 0 {
		cfg.Catalog.DebounceInterval = DefaultCatalogDebounceInterval
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
