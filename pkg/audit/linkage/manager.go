package linkage

import (
	"context"
	"log/slog"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/storage"
)

// Progression classifies a linked audit pair by star-level movement.
type Progression string

const (
	// ProgressionImproved means the current audit scored a higher star level
	// than its predecessor.
	ProgressionImproved Progression = "improved"
	// ProgressionMaintained means both audits scored the same star level.
	ProgressionMaintained Progression = "maintained"
	// ProgressionDeclined means the current audit scored a lower star level.
	ProgressionDeclined Progression = "declined"
)

// LinkResult reports a successful link and its progression classification.
type LinkResult struct {
	Progression       Progression `json:"progression"`
	CurrentStarLevel  int         `json:"current_star_level"`
	PreviousStarLevel int         `json:"previous_star_level"`
}

// Manager links audits into progression chains.
type Manager struct {
	store  storage.Store
	logger *slog.Logger
}

// NewManager creates a linkage manager.
func NewManager(store storage.Store) *Manager {
	return &Manager{
		store:  store,
		logger: slog.Default().With("component", "audit.linkage"),
	}
}

// Link sets previousAuditID as the predecessor of auditID and returns the
// progression classification.
//
// Preconditions, all enforced: both audits exist and lie within scope, both
// belong to the same laboratory, the link is not self-referential, the
// predecessor has a finalized (completed) score, and the link does not
// create a cycle.
func (m *Manager) Link(ctx context.Context, scope audit.Scope, auditID, previousAuditID string) (*LinkResult, error) {
	if auditID == previousAuditID {
		return nil, audit.NewValidationError("previous_audit_id", "an audit cannot be its own predecessor")
	}

	current, err := m.store.GetAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	previous, err := m.store.GetAudit(ctx, previousAuditID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsLaboratory(current.LaboratoryID) {
		return nil, &audit.ScopeViolationError{
			AuditID:      auditID,
			LaboratoryID: current.LaboratoryID,
			Reason:       "audit is outside the caller's authorization scope",
		}
	}
	if !scope.AllowsLaboratory(previous.LaboratoryID) {
		return nil, &audit.ScopeViolationError{
			AuditID:      previousAuditID,
			LaboratoryID: previous.LaboratoryID,
			Reason:       "previous audit is outside the caller's authorization scope",
		}
	}
	if current.LaboratoryID != previous.LaboratoryID {
		return nil, &audit.ScopeViolationError{
			AuditID:      auditID,
			LaboratoryID: current.LaboratoryID,
			Reason:       "audits belong to different laboratories",
		}
	}

	if err := m.checkCycle(ctx, auditID, previousAuditID); err != nil {
		return nil, err
	}

	if previous.Status != audit.StatusCompleted {
		return nil, &audit.UnscoredPredecessorError{
			AuditID:         auditID,
			PreviousAuditID: previousAuditID,
		}
	}

	current.PreviousAuditID = previousAuditID
	if err := m.store.UpdateAudit(ctx, current); err != nil {
		return nil, err
	}

	result := &LinkResult{
		Progression:       classify(current.CalculatedStarLevel, previous.CalculatedStarLevel),
		CurrentStarLevel:  current.CalculatedStarLevel,
		PreviousStarLevel: previous.CalculatedStarLevel,
	}

	m.logger.Info("audits linked",
		"audit_id", auditID,
		"previous_audit_id", previousAuditID,
		"progression", result.Progression,
	)

	return result, nil
}

// Unlink clears the audit's predecessor link. It is idempotent: unlinking an
// already-unlinked audit succeeds.
func (m *Manager) Unlink(ctx context.Context, auditID string) error {
	a, err := m.store.GetAudit(ctx, auditID)
	if err != nil {
		return err
	}
	if a.PreviousAuditID == "" {
		return nil
	}
	a.PreviousAuditID = ""
	return m.store.UpdateAudit(ctx, a)
}

// ListLinkable returns the audits of the laboratory that may be linked as
// predecessors of currentAuditID: the current audit itself and any audit
// whose linkage would create a cycle are excluded. Results are ordered by
// OpenedOn descending and recomputed on every call.
func (m *Manager) ListLinkable(ctx context.Context, scope audit.Scope, laboratoryID, currentAuditID string) ([]*audit.Audit, error) {
	if !scope.AllowsLaboratory(laboratoryID) {
		return nil, &audit.ScopeViolationError{
			AuditID:      currentAuditID,
			LaboratoryID: laboratoryID,
			Reason:       "laboratory is outside the caller's authorization scope",
		}
	}

	candidates, err := m.store.ListAuditsByLaboratory(ctx, laboratoryID)
	if err != nil {
		return nil, err
	}

	linkable := make([]*audit.Audit, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == currentAuditID {
			continue
		}
		if err := m.checkCycle(ctx, currentAuditID, candidate.ID); err != nil {
			continue
		}
		linkable = append(linkable, candidate)
	}
	return linkable, nil
}

// checkCycle walks the chain backward from previousAuditID and returns a
// CycleError if auditID is reachable. A visited set guards the walk against
// pre-existing corrupt chains.
func (m *Manager) checkCycle(ctx context.Context, auditID, previousAuditID string) error {
	path := []string{previousAuditID}
	visited := map[string]bool{previousAuditID: true}

	cursor := previousAuditID
	for cursor != "" {
		if cursor == auditID {
			return &audit.CycleError{
				AuditID:         auditID,
				PreviousAuditID: previousAuditID,
				Path:            path,
			}
		}
		a, err := m.store.GetAudit(ctx, cursor)
		if err != nil {
			return err
		}
		cursor = a.PreviousAuditID
		if cursor == "" {
			break
		}
		if visited[cursor] {
			break
		}
		visited[cursor] = true
		path = append(path, cursor)
	}
	return nil
}

// classify compares two star levels.
func classify(current, previous int) Progression {
	switch {
	case current > previous:
		return ProgressionImproved
	case current < previous:
		return ProgressionDeclined
	default:
		return ProgressionMaintained
	}
}
