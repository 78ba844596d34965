// Package metrics exposes Prometheus metrics for the audit engine.
//
// The Collector owns a registry and pre-registered metric instances for the
// engine's operations: response writes, score computations, composite
// downgrades, blocked closures, and reconciler corrections. A nil
// *Collector is a valid no-op receiver, so components can record metrics
// unconditionally.
package metrics
