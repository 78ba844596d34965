// Package logging configures structured logging for the engine.
//
// It wraps log/slog: New builds a logger from a level/format configuration,
// SetDefault installs it process-wide, and Component returns a logger tagged
// with a component name, the convention every engine package follows:
//
//	logger := logging.Component("audit.scoring")
//	logger.Info("score computed", "audit_id", id)
package logging
