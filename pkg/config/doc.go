// Package config loads and validates Calibra configuration.
//
// Configuration is YAML with three layers applied in order: file values,
// defaults for anything unset, then CALIBRA_* environment variable
// overrides. The final configuration is validated before use; validation
// collects every field error rather than stopping at the first.
//
// Example:
//
//	storage:
//	  backend: sqlite
//	  sqlite:
//	    path: data/audits.db
//	catalog:
//	  path: slipta-catalog.yaml
//	  watch: true
//	scoring:
//	  partial_credit: 0.0
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
