// Package linkage manages previous-audit chains and progression tracking.
//
// An audit may be linked to one prior audit of the same laboratory. Chains
// are strictly acyclic: Link walks the existing chain backward from the
// proposed predecessor and rejects the link if the current audit is
// reachable. Cross-laboratory links and links outside the caller's resolved
// authorization scope are rejected as scope violations.
//
// Progression compares the two audits' star levels: higher is "improved",
// lower is "declined", exact equality is "maintained" (no tolerance band —
// star levels are small integers and the comparison is exact). Linking to a
// predecessor that has not been completed is rejected with
// UnscoredPredecessorError: its score is not frozen yet, and a progression
// classified against it would be retroactively wrong.
package linkage
