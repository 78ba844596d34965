// Package engine is the synchronous API surface of the audit rules engine.
//
// The Manager wires the catalog, store, and rule components together and
// adds the one discipline none of them can provide alone: per-audit
// serialization. Every operation on an audit — response writes, team edits,
// linking, closure — runs under that audit's exclusive lock, because the
// rules are check-then-act (cycle detection before linking, composition
// counts before closing, all-subs-satisfied before accepting Y) and must
// not race a concurrent mutation of the same audit. Operations on distinct
// audits proceed in parallel.
//
// Score recomputation is atomic with the response write that triggered it:
// both happen under the same lock, so readers never observe a response set
// and a cached score that disagree.
package engine
