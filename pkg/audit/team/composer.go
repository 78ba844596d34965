package team

import (
	"context"
	"fmt"
	"log/slog"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/storage"
)

// Composition reports the role make-up of a review team. Valid requires
// exactly one lead.
type Composition struct {
	Valid         bool `json:"valid"`
	LeadCount     int  `json:"lead_count"`
	MemberCount   int  `json:"member_count"`
	ObserverCount int  `json:"observer_count"`
}

// Composer manages review-team membership.
type Composer struct {
	store  storage.Store
	logger *slog.Logger
}

// NewComposer creates a team composer.
func NewComposer(store storage.Store) *Composer {
	return &Composer{
		store:  store,
		logger: slog.Default().With("component", "audit.team"),
	}
}

// AddMember adds a user to the audit's review team. A user already on the
// team cannot be re-added in any role (DuplicateMemberError).
func (c *Composer) AddMember(ctx context.Context, auditID, userID string, role audit.Role) error {
	if !role.Valid() {
		return audit.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	if userID == "" {
		return audit.NewValidationError("user_id", "user id is required")
	}

	if _, err := c.store.GetAudit(ctx, auditID); err != nil {
		return err
	}

	members, err := c.store.ListTeamMembers(ctx, auditID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID == userID {
			return &audit.DuplicateMemberError{AuditID: auditID, UserID: userID}
		}
	}

	return c.store.AddTeamMember(ctx, &audit.TeamMember{
		AuditID: auditID,
		UserID:  userID,
		Role:    role,
	})
}

// RemoveMember removes a user from the team. Removing the sole remaining
// lead is rejected with LastLeadError.
func (c *Composer) RemoveMember(ctx context.Context, auditID, userID string) error {
	members, err := c.store.ListTeamMembers(ctx, auditID)
	if err != nil {
		return err
	}

	var target *audit.TeamMember
	leadCount := 0
	for _, m := range members {
		if m.Role == audit.RoleLead {
			leadCount++
		}
		if m.UserID == userID {
			target = m
		}
	}
	if target == nil {
		return audit.NewNotFoundError("team_member", auditID+"/"+userID)
	}
	if target.Role == audit.RoleLead && leadCount == 1 {
		return &audit.LastLeadError{AuditID: auditID, UserID: userID}
	}

	return c.store.RemoveTeamMember(ctx, auditID, userID)
}

// ValidateComposition reports the team's role counts. Valid iff the lead
// count is exactly one. The check is advisory while the team is being
// assembled; closure turns it into a gate.
func (c *Composer) ValidateComposition(ctx context.Context, auditID string) (*Composition, error) {
	members, err := c.store.ListTeamMembers(ctx, auditID)
	if err != nil {
		return nil, err
	}

	comp := &Composition{}
	for _, m := range members {
		switch m.Role {
		case audit.RoleLead:
			comp.LeadCount++
		case audit.RoleMember:
			comp.MemberCount++
		case audit.RoleObserver:
			comp.ObserverCount++
		}
	}
	comp.Valid = comp.LeadCount == 1
	return comp, nil
}
