package main

import (
	"fmt"

	"labtrust-hq/calibra/pkg/audit/engine"
	"labtrust-hq/calibra/pkg/audit/history"
	"labtrust-hq/calibra/pkg/audit/scoring"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/catalog"
	"labtrust-hq/calibra/pkg/config"
	"labtrust-hq/calibra/pkg/telemetry/logging"
	"labtrust-hq/calibra/pkg/telemetry/metrics"
)

// runtime bundles the wired components a command needs, plus the handles
// that must be released when the command is done.
type runtime struct {
	cfg     *config.Config
	manager *engine.Manager
	store   storage.Store
	ledger  *history.Ledger
}

// Close releases the storage and ledger handles.
func (r *runtime) Close() error {
	var firstErr error
	if r.ledger != nil {
		if err := r.ledger.Close(); err != nil {
			firstErr = err
		}
	}
	if err := r.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// newRuntime loads configuration, initializes logging, opens storage and
// the history ledger, loads the catalog, and wires the audit engine.
func newRuntime() (*runtime, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.SetDefault(logger)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var store storage.Store
	switch cfg.Storage.Backend {
	case "memory":
		store = storage.NewMemoryStore()
	default:
		sqliteCfg := &storage.SQLiteConfig{
			Path:         cfg.Storage.SQLite.Path,
			MaxOpenConns: cfg.Storage.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Storage.SQLite.MaxIdleConns,
			WALMode:      cfg.Storage.SQLite.WALMode,
			BusyTimeout:  cfg.Storage.SQLite.BusyTimeout,
		}
		store, err = storage.NewSQLiteStore(sqliteCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit storage: %w", err)
		}
	}

	var ledger *history.Ledger
	if cfg.History.Enabled {
		ledger, err = history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history ledger: %w", err)
		}
	}

	collector := metrics.NewCollector(metrics.Config{
		Enabled:   cfg.Telemetry.Metrics.Enabled,
		Namespace: cfg.Telemetry.Metrics.Namespace,
	}, nil)

	manager, err := engine.New(engine.Config{
		Catalog: cat,
		Store:   store,
		Scoring: scoring.Config{PartialCredit: cfg.Scoring.PartialCredit},
		Ledger:  ledger,
		Metrics: collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire audit engine: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		manager: manager,
		store:   store,
		ledger:  ledger,
	}, nil
}
