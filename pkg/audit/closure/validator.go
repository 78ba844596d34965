package closure

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/composite"
	"labtrust-hq/calibra/pkg/audit/history"
	"labtrust-hq/calibra/pkg/audit/scoring"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/audit/team"
	"labtrust-hq/calibra/pkg/catalog"
)

// MinReopenJustification is the minimum length, in characters, of a reopen
// justification.
const MinReopenJustification = 20

// Report is the outcome of a closure evaluation. Blockers gate the
// transition; warnings are informational.
type Report struct {
	CanClose bool            `json:"can_close"`
	Blockers []audit.Blocker `json:"blockers"`
	Warnings []audit.Warning `json:"warnings"`
}

// Validator evaluates and executes audit closure.
type Validator struct {
	catalogs  catalog.Provider
	store     storage.Store
	scorer    *scoring.Engine
	composite *composite.Validator
	team      *team.Composer
	ledger    *history.Ledger // optional
	logger    *slog.Logger
	now       func() time.Time
}

// NewValidator creates a closure validator. The ledger may be nil, in which
// case no snapshots are recorded.
func NewValidator(catalogs catalog.Provider, store storage.Store, scorer *scoring.Engine,
	compositeValidator *composite.Validator, composer *team.Composer, ledger *history.Ledger) *Validator {
	return &Validator{
		catalogs:  catalogs,
		store:     store,
		scorer:    scorer,
		composite: compositeValidator,
		team:      composer,
		ledger:    ledger,
		logger:    slog.Default().With("component", "audit.closure"),
		now:       time.Now,
	}
}

// Evaluate gathers every blocking condition and warning for the audit. All
// conditions are checked; nothing short-circuits.
func (v *Validator) Evaluate(ctx context.Context, auditID string) (*Report, error) {
	if _, err := v.store.GetAudit(ctx, auditID); err != nil {
		return nil, err
	}

	responses, err := v.store.ListResponses(ctx, auditID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]*audit.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	findings, err := v.store.ListFindings(ctx, auditID)
	if err != nil {
		return nil, err
	}
	findingsByQuestion := make(map[string]int, len(findings))
	for _, f := range findings {
		if f.QuestionID != "" {
			findingsByQuestion[f.QuestionID]++
		}
	}

	report := &Report{}
	for _, q := range v.catalogs.Current().Questions() {
		r, answered := byQuestion[q.ID]
		if !answered {
			report.Blockers = append(report.Blockers, audit.Blocker{
				Code:       audit.BlockerUnansweredQuestion,
				QuestionID: q.ID,
				Detail:     fmt.Sprintf("question %s has no response", q.QCode),
			})
			continue
		}

		if r.Answer.NonConformance() {
			if findingsByQuestion[q.ID] == 0 {
				report.Blockers = append(report.Blockers, audit.Blocker{
					Code:       audit.BlockerUndocumentedNonConformance,
					QuestionID: q.ID,
					Detail:     fmt.Sprintf("question %s is answered %s but has no finding", q.QCode, r.Answer),
				})
			}
			if len(r.EvidenceRefs) == 0 {
				report.Warnings = append(report.Warnings, audit.Warning{
					Code:       audit.WarningMissingEvidence,
					QuestionID: q.ID,
					Detail:     fmt.Sprintf("question %s is answered %s without attached evidence", q.QCode, r.Answer),
				})
			}
		}

		if r.Answer == audit.AnswerNA && r.NAJustification == "" {
			report.Blockers = append(report.Blockers, audit.Blocker{
				Code:       audit.BlockerMissingNAJustification,
				QuestionID: q.ID,
				Detail:     fmt.Sprintf("question %s is answered NA without a justification", q.QCode),
			})
		}

		// Defensive re-check: the composite validator prevents this at write
		// time, but the auto-downgrade path and catalog reloads can leave a
		// residual inconsistency.
		if r.Answer == audit.AnswerYes && q.RequiresAllSubsForYes {
			unsatisfied, err := v.composite.CheckQuestion(ctx, auditID, q)
			if err != nil {
				return nil, err
			}
			if len(unsatisfied) > 0 {
				report.Blockers = append(report.Blockers, audit.Blocker{
					Code:       audit.BlockerCompositeViolation,
					QuestionID: q.ID,
					Detail:     fmt.Sprintf("question %s is answered Y with unsatisfied sub-answers", q.QCode),
				})
			}
		}
	}

	comp, err := v.team.ValidateComposition(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if !comp.Valid {
		report.Blockers = append(report.Blockers, audit.Blocker{
			Code:   audit.BlockerTeamComposition,
			Detail: fmt.Sprintf("team requires exactly one lead, found %d", comp.LeadCount),
		})
	}

	report.CanClose = len(report.Blockers) == 0
	return report, nil
}

// Close transitions the audit from in_progress to completed, freezing its
// score. When blockers remain it fails with ClosureBlockedError carrying
// the full list, leaving the audit untouched.
func (v *Validator) Close(ctx context.Context, auditID string) error {
	a, err := v.store.GetAudit(ctx, auditID)
	if err != nil {
		return err
	}
	if a.Status != audit.StatusInProgress {
		return &audit.StateError{AuditID: auditID, Status: a.Status, Op: "close"}
	}

	report, err := v.Evaluate(ctx, auditID)
	if err != nil {
		return err
	}
	if !report.CanClose {
		return &audit.ClosureBlockedError{AuditID: auditID, Blockers: report.Blockers}
	}

	score, err := v.scorer.Compute(ctx, auditID)
	if err != nil {
		return err
	}

	closedOn := v.now()
	a.Status = audit.StatusCompleted
	a.ClosedOn = &closedOn
	a.CalculatedStarLevel = score.StarLevel
	if err := v.store.UpdateAudit(ctx, a); err != nil {
		return err
	}

	if v.ledger != nil {
		snapshot := history.NewSnapshot(a, score, history.EventClosed, closedOn)
		if err := v.ledger.Append(ctx, snapshot); err != nil {
			// The audit is already closed; a ledger failure must not undo
			// the transition.
			v.logger.Error("failed to append closure snapshot",
				"audit_id", auditID,
				"error", err,
			)
		}
	}

	v.logger.Info("audit closed",
		"audit_id", auditID,
		"star_level", score.StarLevel,
		"percentage", score.Percentage,
	)

	return nil
}

// Reopen transitions a completed audit back to in_progress. The caller is
// responsible for verifying the actor's elevated privilege; this method
// enforces only the justification length.
func (v *Validator) Reopen(ctx context.Context, auditID, justification string) error {
	if utf8.RuneCountInString(justification) < MinReopenJustification {
		return audit.NewValidationError("justification",
			fmt.Sprintf("reopen justification must be at least %d characters", MinReopenJustification))
	}

	a, err := v.store.GetAudit(ctx, auditID)
	if err != nil {
		return err
	}
	if a.Status != audit.StatusCompleted {
		return &audit.StateError{AuditID: auditID, Status: a.Status, Op: "reopen"}
	}

	reopenedAt := v.now()
	frozen := a.CalculatedStarLevel

	a.Status = audit.StatusInProgress
	a.ClosedOn = nil
	if a.AuditorNotes != "" {
		a.AuditorNotes += "\n"
	}
	a.AuditorNotes += fmt.Sprintf("[reopened %s] %s", reopenedAt.Format(time.RFC3339), justification)
	if err := v.store.UpdateAudit(ctx, a); err != nil {
		return err
	}

	if v.ledger != nil {
		snapshot := history.NewSnapshot(a, &audit.Score{StarLevel: frozen}, history.EventReopened, reopenedAt)
		if err := v.ledger.Append(ctx, snapshot); err != nil {
			v.logger.Error("failed to append reopen snapshot",
				"audit_id", auditID,
				"error", err,
			)
		}
	}

	v.logger.Info("audit reopened", "audit_id", auditID)
	return nil
}
