// Package composite enforces parent/sub-question consistency on every
// response write.
//
// A composite question (RequiresAllSubsForYes) may only be answered Y when
// every one of its sub-questions is answered Y or NA. Writes also enforce
// the comment discipline: P, N, and NA answers require a comment, and NA
// additionally requires a justification.
//
// When a sub-answer changes to P or N while its composite parent is Y, the
// parent is automatically downgraded to P and the caller is told via
// SubAnswerResult so it can notify the auditor. The parent's existing
// comment is left untouched: the downgraded parent may transiently lack the
// comment a P answer requires until a human supplies one. That window is
// intentional and closes at the latest at closure evaluation, which reports
// the residual violation as a blocker.
package composite
