// Package scoring derives the audit Score from the question catalog and the
// recorded responses.
//
// # Scoring Rules
//
// The engine iterates the full catalog, not just the answered questions:
//
//   - Y earns the full question weight
//   - P earns weight × PartialCredit (configurable, default 0)
//   - N earns nothing
//   - NA removes the question weight from the denominator entirely
//   - unanswered earns nothing but stays in the denominator
//
// The adjusted denominator is the fixed catalog total minus NA exclusions.
// Percentage is earned/denominator×100 rounded to one decimal place, zero
// when the denominator is not positive. The star level is a 0-5 banding of
// the percentage (see StarLevel).
//
// The partial-credit fraction is deliberately configurable rather than
// fixed: the authoritative SLIPTA rubric does not pin a point value for
// partial compliance, so deployments set it explicitly and the default
// grants no credit.
package scoring
