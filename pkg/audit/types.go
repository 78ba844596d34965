package audit

import "time"

// Answer is a checklist response value.
type Answer string

const (
	// AnswerYes marks a fully compliant response.
	AnswerYes Answer = "Y"
	// AnswerPartial marks a partially compliant response.
	AnswerPartial Answer = "P"
	// AnswerNo marks a non-compliant response.
	AnswerNo Answer = "N"
	// AnswerNA marks a response that does not apply to this laboratory.
	// NA answers are excluded from both earned points and the denominator.
	AnswerNA Answer = "NA"
)

// Valid reports whether a is one of the four recognised answer values.
func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerPartial, AnswerNo, AnswerNA:
		return true
	}
	return false
}

// NonConformance reports whether a documents a non-conformance (P or N).
// Non-conformances require an associated Finding before the audit can close.
func (a Answer) NonConformance() bool {
	return a == AnswerPartial || a == AnswerNo
}

// Status is the lifecycle state of an audit.
type Status string

const (
	// StatusDraft is the initial state; the audit has been created but
	// response recording has not started.
	StatusDraft Status = "draft"
	// StatusInProgress is the only state in which responses, sub-responses,
	// and findings may be mutated.
	StatusInProgress Status = "in_progress"
	// StatusCompleted is the closed, read-only state. The score is frozen.
	StatusCompleted Status = "completed"
	// StatusCancelled is a terminal state for abandoned audits.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a recognised lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Role is a review-team role.
type Role string

const (
	// RoleLead is the audit lead. Exactly one lead is required to close.
	RoleLead Role = "lead"
	// RoleMember is a regular reviewer.
	RoleMember Role = "member"
	// RoleObserver attends without review responsibility.
	RoleObserver Role = "observer"
)

// Valid reports whether r is a recognised team role.
func (r Role) Valid() bool {
	switch r {
	case RoleLead, RoleMember, RoleObserver:
		return true
	}
	return false
}

// Severity classifies a finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a recognised severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Audit is a single SLIPTA assessment of one laboratory.
type Audit struct {
	// ID is the audit identifier (UUID v4).
	ID string `json:"id"`

	// LaboratoryID identifies the assessed laboratory.
	LaboratoryID string `json:"laboratory_id"`

	// Status is the lifecycle state.
	Status Status `json:"status"`

	// OpenedOn is when the audit was created.
	OpenedOn time.Time `json:"opened_on"`

	// ClosedOn is when the audit was completed. Nil while open.
	ClosedOn *time.Time `json:"closed_on,omitempty"`

	// PreviousAuditID links this audit to the prior audit of the same
	// laboratory for progression tracking. Empty when unlinked. Chains are
	// acyclic and never cross laboratories.
	PreviousAuditID string `json:"previous_audit_id,omitempty"`

	// CalculatedStarLevel is the cached star level. While in progress it is
	// refreshed on every response write; at closure it is frozen.
	CalculatedStarLevel int `json:"calculated_star_level"`

	// AuditorNotes is free-form commentary, including reopen justifications.
	AuditorNotes string `json:"auditor_notes,omitempty"`
}

// Response is the recorded answer to one catalog question.
type Response struct {
	AuditID    string `json:"audit_id"`
	QuestionID string `json:"question_id"`
	Answer     Answer `json:"answer"`

	// Comment is required for P, N, and NA answers.
	Comment string `json:"comment,omitempty"`

	// NAJustification is additionally required for NA answers.
	NAJustification string `json:"na_justification,omitempty"`

	// EvidenceRefs holds references to supporting evidence files. Evidence
	// is informational: a P/N response without evidence produces a closure
	// warning, never a blocker.
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
}

// SubResponse is the recorded answer to one sub-question.
type SubResponse struct {
	AuditID       string `json:"audit_id"`
	SubQuestionID string `json:"sub_question_id"`
	Answer        Answer `json:"answer"`
}

// TeamMember is one reviewer on an audit's team.
type TeamMember struct {
	AuditID string `json:"audit_id"`
	UserID  string `json:"user_id"`
	Role    Role   `json:"role"`
}

// Finding documents a non-conformance discovered during the audit.
type Finding struct {
	// ID is the finding identifier (UUID v4).
	ID      string `json:"id"`
	AuditID string `json:"audit_id"`

	// QuestionID ties the finding to a specific question. Optional:
	// section-level findings leave it empty.
	QuestionID string `json:"question_id,omitempty"`

	SectionID   string   `json:"section_id"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
}

// Score is the derived scoring state of an audit.
type Score struct {
	// Earned is the total points earned. Partial answers may contribute a
	// configurable fraction of their question weight.
	Earned float64 `json:"earned"`

	// AdjustedDenominator is the catalog total weight minus the weight of
	// questions answered NA. Unanswered questions stay in the denominator.
	AdjustedDenominator int `json:"adjusted_denominator"`

	// NAPointsExcluded is the total weight removed by NA answers.
	NAPointsExcluded int `json:"na_points_excluded"`

	// Percentage is earned/adjusted_denominator*100, rounded to one decimal
	// place. Zero when the adjusted denominator is not positive.
	Percentage float64 `json:"percentage"`

	// StarLevel is the 0-5 SLIPTA rating derived from Percentage.
	StarLevel int `json:"star_level"`
}

// Scope is a resolved authorization scope. It bounds which audits linkage
// and team operations may touch; the engine never computes role permissions
// itself.
type Scope struct {
	// Global grants access to every laboratory.
	Global bool `json:"global"`

	// CountryIDs lists countries the actor may act upon. Country membership
	// of a laboratory is resolved by the surrounding application.
	CountryIDs []string `json:"country_ids,omitempty"`

	// LaboratoryIDs lists individual laboratories the actor may act upon.
	LaboratoryIDs []string `json:"laboratory_ids,omitempty"`
}

// AllowsLaboratory reports whether the scope permits acting on the given
// laboratory.
func (s Scope) AllowsLaboratory(laboratoryID string) bool {
	if s.Global {
		return true
	}
	for _, id := range s.LaboratoryIDs {
		if id == laboratoryID {
			return true
		}
	}
	return false
}

// GlobalScope returns a scope that permits every laboratory.
func GlobalScope() Scope {
	return Scope{Global: true}
}

// BlockerCode identifies a closure-blocking condition.
type BlockerCode string

const (
	// BlockerUnansweredQuestion reports a catalog question with no response.
	BlockerUnansweredQuestion BlockerCode = "unanswered_question"
	// BlockerUndocumentedNonConformance reports a P/N response with no
	// associated finding.
	BlockerUndocumentedNonConformance BlockerCode = "undocumented_nonconformance"
	// BlockerMissingNAJustification reports an NA response without a
	// justification.
	BlockerMissingNAJustification BlockerCode = "missing_na_justification"
	// BlockerCompositeViolation reports a residual parent/sub inconsistency.
	BlockerCompositeViolation BlockerCode = "composite_violation"
	// BlockerTeamComposition reports a team whose lead count is not one.
	BlockerTeamComposition BlockerCode = "team_composition_invalid"
)

// Blocker is a single closure-blocking condition.
type Blocker struct {
	Code BlockerCode `json:"code"`

	// QuestionID identifies the offending question where applicable.
	QuestionID string `json:"question_id,omitempty"`

	// Detail is a human-readable description of the condition.
	Detail string `json:"detail"`
}

// WarningCode identifies a non-blocking closure warning.
type WarningCode string

const (
	// WarningMissingEvidence reports a P/N response with no attached
	// evidence. Informational only; never gates closure.
	WarningMissingEvidence WarningCode = "missing_evidence"
)

// Warning is a single non-blocking closure warning.
type Warning struct {
	Code       WarningCode `json:"code"`
	QuestionID string      `json:"question_id,omitempty"`
	Detail     string      `json:"detail"`
}
