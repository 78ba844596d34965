// Package history keeps an append-only ledger of frozen score snapshots.
//
// A snapshot is appended whenever an audit closes (and a marker row when it
// is reopened), giving the surrounding workspace a durable record of every
// finalized score for progression analytics and reporting, independent of
// later reopen/re-close cycles.
//
// The ledger is backed by SQLite through the pure-Go modernc.org/sqlite
// driver so it stays usable in cgo-free builds and cross-compiled tooling,
// where the main store's native driver is unavailable.
package history
