package storage

import (
	"context"

	"labtrust-hq/calibra/pkg/audit"
)

// Store is the persistence interface consumed by the engine.
//
// Get* methods return *audit.NotFoundError when the entity does not exist.
// List* methods return empty slices, never errors, for unknown parents.
type Store interface {
	// CreateAudit persists a new audit.
	CreateAudit(ctx context.Context, a *audit.Audit) error

	// GetAudit returns the audit with the given ID.
	GetAudit(ctx context.Context, id string) (*audit.Audit, error)

	// UpdateAudit replaces the stored audit with the given ID.
	UpdateAudit(ctx context.Context, a *audit.Audit) error

	// ListAudits returns every stored audit, ordered by OpenedOn descending.
	ListAudits(ctx context.Context) ([]*audit.Audit, error)

	// ListAuditsByLaboratory returns the laboratory's audits, ordered by
	// OpenedOn descending.
	ListAuditsByLaboratory(ctx context.Context, laboratoryID string) ([]*audit.Audit, error)

	// PutResponse upserts a response keyed by (AuditID, QuestionID).
	PutResponse(ctx context.Context, r *audit.Response) error

	// GetResponse returns the response for the given audit and question.
	GetResponse(ctx context.Context, auditID, questionID string) (*audit.Response, error)

	// ListResponses returns all responses for the audit.
	ListResponses(ctx context.Context, auditID string) ([]*audit.Response, error)

	// PutSubResponse upserts a sub-response keyed by (AuditID, SubQuestionID).
	PutSubResponse(ctx context.Context, r *audit.SubResponse) error

	// GetSubResponse returns the sub-response for the given audit and
	// sub-question.
	GetSubResponse(ctx context.Context, auditID, subQuestionID string) (*audit.SubResponse, error)

	// ListSubResponses returns all sub-responses for the audit.
	ListSubResponses(ctx context.Context, auditID string) ([]*audit.SubResponse, error)

	// AddTeamMember persists a new team member.
	AddTeamMember(ctx context.Context, m *audit.TeamMember) error

	// RemoveTeamMember deletes the membership of the given user.
	RemoveTeamMember(ctx context.Context, auditID, userID string) error

	// ListTeamMembers returns the audit's team.
	ListTeamMembers(ctx context.Context, auditID string) ([]*audit.TeamMember, error)

	// CreateFinding persists a new finding.
	CreateFinding(ctx context.Context, f *audit.Finding) error

	// ListFindings returns all findings for the audit.
	ListFindings(ctx context.Context, auditID string) ([]*audit.Finding, error)

	// Close releases backend resources.
	Close() error
}
