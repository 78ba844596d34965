// Package team manages review-team membership and composition.
//
// Teams are assembled freely: a user may be added in any role as long as
// they are not already on the team, and multiple leads may transiently
// coexist while the team is being put together. The "exactly one lead" rule
// is advisory until closure time — ValidateComposition reports the counts,
// and the closure validator turns an invalid composition into a blocker.
// The one eager constraint is that the sole remaining lead can never be
// removed, which would leave the team unrecoverable without one.
package team
