// Package closure gates the in_progress → completed transition.
//
// Evaluate aggregates every outstanding blocker in a single pass — it never
// fails fast, so one call always yields the complete picture: unanswered
// questions, undocumented non-conformances (P/N without a finding), NA
// answers without justification, residual composite violations, and an
// invalid team composition. Missing evidence on a P/N answer is reported as
// a warning and never blocks.
//
// Close re-evaluates, rejects with ClosureBlockedError when blockers remain,
// and otherwise freezes the current score onto the audit, stamps the close
// time, and appends a snapshot to the history ledger. Reopen reverses the
// transition for a privileged actor with a justification of at least 20
// characters; privilege itself is checked by the surrounding application.
package closure
