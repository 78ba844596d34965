package audit

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input or a missing required field, such
// as an absent comment on a P/N/NA answer.
type ValidationError struct {
	// Field is the offending field (e.g. "comment", "na_justification").
	Field string
	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed [field=%s]: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CompositeRuleViolation reports a Y answer attempted on a composite question
// whose sub-answers are not all Y or NA.
type CompositeRuleViolation struct {
	AuditID    string
	QuestionID string
	// Unsatisfied lists the sub-question IDs that are not Y/NA (including
	// unanswered sub-questions).
	Unsatisfied []string
}

// Error implements the error interface.
func (e *CompositeRuleViolation) Error() string {
	return fmt.Sprintf("composite rule violation [audit=%s, question=%s]: sub-answers not satisfied: %s",
		e.AuditID, e.QuestionID, strings.Join(e.Unsatisfied, ", "))
}

// DuplicateMemberError reports an attempt to add a user already on the team.
type DuplicateMemberError struct {
	AuditID string
	UserID  string
}

// Error implements the error interface.
func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("duplicate team member [audit=%s, user=%s]", e.AuditID, e.UserID)
}

// LastLeadError reports an attempt to remove the sole remaining lead.
type LastLeadError struct {
	AuditID string
	UserID  string
}

// Error implements the error interface.
func (e *LastLeadError) Error() string {
	return fmt.Sprintf("cannot remove last lead [audit=%s, user=%s]", e.AuditID, e.UserID)
}

// CycleError reports a linkage that would create a previous-audit cycle.
type CycleError struct {
	AuditID         string
	PreviousAuditID string
	// Path is the chain walked from PreviousAuditID back to AuditID.
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("linking audit %s to %s would create a cycle: %s",
		e.AuditID, e.PreviousAuditID, strings.Join(e.Path, " -> "))
}

// ScopeViolationError reports a cross-laboratory action or an action on an
// audit outside the caller's resolved scope.
type ScopeViolationError struct {
	AuditID      string
	LaboratoryID string
	Reason       string
}

// Error implements the error interface.
func (e *ScopeViolationError) Error() string {
	return fmt.Sprintf("scope violation [audit=%s, laboratory=%s]: %s",
		e.AuditID, e.LaboratoryID, e.Reason)
}

// ClosureBlockedError reports a close attempt with outstanding blockers. It
// always carries the complete blocker list so callers need not probe
// repeatedly.
type ClosureBlockedError struct {
	AuditID  string
	Blockers []Blocker
}

// Error implements the error interface.
func (e *ClosureBlockedError) Error() string {
	return fmt.Sprintf("closure blocked [audit=%s]: %d outstanding blockers", e.AuditID, len(e.Blockers))
}

// UnscoredPredecessorError reports a linkage to a previous audit whose score
// has not been finalized. Progression against an unfrozen score would be
// retroactively wrong once the predecessor closes, so the link is rejected.
type UnscoredPredecessorError struct {
	AuditID         string
	PreviousAuditID string
}

// Error implements the error interface.
func (e *UnscoredPredecessorError) Error() string {
	return fmt.Sprintf("previous audit %s has no finalized score (cannot link from %s)",
		e.PreviousAuditID, e.AuditID)
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	// Kind is the entity kind ("audit", "question", "response", ...).
	Kind string
	// ID is the missing identifier.
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// StateError reports an operation attempted in an incompatible lifecycle
// state, such as writing responses to a completed audit.
type StateError struct {
	AuditID string
	Status  Status
	Op      string
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("operation %q not allowed [audit=%s, status=%s]", e.Op, e.AuditID, e.Status)
}
