// Package audit defines the core domain model for the Calibra compliance
// engine: audits, checklist responses, review teams, findings, derived
// scores, and the typed error taxonomy shared by every component.
//
// # Domain Model
//
// An Audit is a single SLIPTA assessment of one laboratory. While the audit
// is in progress, auditors record a Response per catalog question and a
// SubResponse per sub-question. Non-conformances (P or N answers) are
// documented through Findings. A review team of TeamMembers oversees the
// audit; exactly one lead is required before the audit can be closed.
//
// The Score is derived state, recomputed on every response write by the
// scoring engine and frozen onto the audit at closure.
//
// # Error Taxonomy
//
// All rule violations are returned as typed errors defined in this package:
//
//   - ValidationError: missing required comment/justification, malformed input
//   - CompositeRuleViolation: Y attempted without satisfied sub-answers
//   - DuplicateMemberError: user already on the review team
//   - LastLeadError: removal of the sole remaining lead
//   - CycleError: linkage that would create a previous-audit cycle
//   - ScopeViolationError: cross-laboratory or out-of-scope action
//   - ClosureBlockedError: closure attempted with outstanding blockers
//   - UnscoredPredecessorError: linkage to an audit without a frozen score
//
// Callers are expected to branch on these with errors.As; none of them are
// ever dropped or collapsed into plain strings by the engine.
package audit
