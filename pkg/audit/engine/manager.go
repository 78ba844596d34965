package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/closure"
	"labtrust-hq/calibra/pkg/audit/composite"
	"labtrust-hq/calibra/pkg/audit/history"
	"labtrust-hq/calibra/pkg/audit/linkage"
	"labtrust-hq/calibra/pkg/audit/scoring"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/audit/team"
	"labtrust-hq/calibra/pkg/catalog"
	"labtrust-hq/calibra/pkg/telemetry/metrics"
)

// Config contains configuration for the engine manager.
type Config struct {
	// Catalog is the initial question catalog. Required.
	Catalog *catalog.Catalog

	// Store is the persistence backend. Required.
	Store storage.Store

	// Scoring configures the scoring engine.
	Scoring scoring.Config

	// Ledger optionally records frozen-score snapshots at closure.
	Ledger *history.Ledger

	// Metrics optionally records Prometheus metrics.
	Metrics *metrics.Collector
}

// SetAnswerResult reports a response write and the score it produced.
type SetAnswerResult struct {
	// Score is the audit's score after the write.
	Score *audit.Score `json:"score"`
}

// SetSubAnswerResult reports a sub-response write, any parent downgrade, and
// the score after the write.
type SetSubAnswerResult struct {
	composite.SubAnswerResult

	// Score is the audit's score after the write.
	Score *audit.Score `json:"score"`
}

// FindingInput carries the fields of a new finding.
type FindingInput struct {
	QuestionID  string
	SectionID   string
	Severity    audit.Severity
	Title       string
	Description string
}

// Manager is the engine facade. All methods are safe for concurrent use;
// operations touching the same audit are serialized.
type Manager struct {
	store     storage.Store
	catalogs  *catalog.Swappable
	scorer    *scoring.Engine
	composite *composite.Validator
	linkage   *linkage.Manager
	team      *team.Composer
	closure   *closure.Validator
	metrics   *metrics.Collector
	locks     *lockTable
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an engine manager from the configuration.
func New(cfg Config) (*Manager, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine: store is required")
	}

	catalogs := catalog.NewSwappable(cfg.Catalog)

	scorer, err := scoring.NewEngine(catalogs, cfg.Store, cfg.Scoring)
	if err != nil {
		return nil, err
	}

	compositeValidator := composite.NewValidator(catalogs, cfg.Store)
	composer := team.NewComposer(cfg.Store)

	return &Manager{
		store:     cfg.Store,
		catalogs:  catalogs,
		scorer:    scorer,
		composite: compositeValidator,
		linkage:   linkage.NewManager(cfg.Store),
		team:      composer,
		closure:   closure.NewValidator(catalogs, cfg.Store, scorer, compositeValidator, composer, cfg.Ledger),
		metrics:   cfg.Metrics,
		locks:     newLockTable(),
		logger:    slog.Default().With("component", "audit.engine"),
		now:       time.Now,
	}, nil
}

// SwapCatalog atomically replaces the active catalog. In-flight operations
// finish against the catalog they started with; cached scores drift until
// the reconciler's next sweep.
func (m *Manager) SwapCatalog(c *catalog.Catalog) {
	m.catalogs.Swap(c)
	m.logger.Info("catalog swapped",
		"version", c.Version,
		"questions", c.QuestionCount(),
		"total_weight", c.TotalWeight(),
	)
}

// Catalog returns the currently active catalog.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalogs.Current()
}

// CreateAudit creates a new draft audit for the laboratory.
func (m *Manager) CreateAudit(ctx context.Context, laboratoryID, notes string) (*audit.Audit, error) {
	if laboratoryID == "" {
		return nil, audit.NewValidationError("laboratory_id", "laboratory id is required")
	}

	a := &audit.Audit{
		ID:           uuid.NewString(),
		LaboratoryID: laboratoryID,
		Status:       audit.StatusDraft,
		OpenedOn:     m.now(),
		AuditorNotes: notes,
	}
	err := m.store.CreateAudit(ctx, a)
	m.metrics.RecordOperation("create_audit", err)
	if err != nil {
		return nil, err
	}

	m.logger.Info("audit created", "audit_id", a.ID, "laboratory_id", laboratoryID)
	return a, nil
}

// StartAudit transitions a draft audit to in_progress.
func (m *Manager) StartAudit(ctx context.Context, auditID string) error {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	err := m.transition(ctx, auditID, audit.StatusDraft, audit.StatusInProgress, "start")
	m.metrics.RecordOperation("start_audit", err)
	return err
}

// CancelAudit transitions a draft or in_progress audit to cancelled.
func (m *Manager) CancelAudit(ctx context.Context, auditID string) error {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	a, err := m.store.GetAudit(ctx, auditID)
	if err != nil {
		m.metrics.RecordOperation("cancel_audit", err)
		return err
	}
	if a.Status != audit.StatusDraft && a.Status != audit.StatusInProgress {
		err = &audit.StateError{AuditID: auditID, Status: a.Status, Op: "cancel"}
		m.metrics.RecordOperation("cancel_audit", err)
		return err
	}
	a.Status = audit.StatusCancelled
	err = m.store.UpdateAudit(ctx, a)
	m.metrics.RecordOperation("cancel_audit", err)
	return err
}

// GetAudit returns the audit with the given ID.
func (m *Manager) GetAudit(ctx context.Context, auditID string) (*audit.Audit, error) {
	return m.store.GetAudit(ctx, auditID)
}

// SetAnswer validates and writes a question response, then recomputes the
// score atomically with the write.
func (m *Manager) SetAnswer(ctx context.Context, auditID, questionID string, in composite.SetAnswerInput) (*SetAnswerResult, error) {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.composite.SetAnswer(ctx, auditID, questionID, in); err != nil {
		m.metrics.RecordOperation("set_answer", err)
		return nil, err
	}

	score, err := m.refreshScore(ctx, auditID)
	m.metrics.RecordOperation("set_answer", err)
	if err != nil {
		return nil, err
	}
	return &SetAnswerResult{Score: score}, nil
}

// SetSubAnswer validates and writes a sub-question response, downgrading
// the composite parent when invalidated, then recomputes the score.
func (m *Manager) SetSubAnswer(ctx context.Context, auditID, subQuestionID string, answer audit.Answer) (*SetSubAnswerResult, error) {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	result, err := m.composite.SetSubAnswer(ctx, auditID, subQuestionID, answer)
	if err != nil {
		m.metrics.RecordOperation("set_sub_answer", err)
		return nil, err
	}
	if result.ParentInvalidated {
		m.metrics.RecordCompositeDowngrade()
	}

	score, err := m.refreshScore(ctx, auditID)
	m.metrics.RecordOperation("set_sub_answer", err)
	if err != nil {
		return nil, err
	}
	return &SetSubAnswerResult{SubAnswerResult: *result, Score: score}, nil
}

// ComputeScore returns the audit's current score without mutating anything.
func (m *Manager) ComputeScore(ctx context.Context, auditID string) (*audit.Score, error) {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	start := m.now()
	score, err := m.scorer.Compute(ctx, auditID)
	if err == nil {
		m.metrics.RecordScoreComputed(m.now().Sub(start))
	}
	m.metrics.RecordOperation("compute_score", err)
	return score, err
}

// AddFinding records a finding against an in-progress audit.
func (m *Manager) AddFinding(ctx context.Context, auditID string, in FindingInput) (*audit.Finding, error) {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	f, err := m.addFinding(ctx, auditID, in)
	m.metrics.RecordOperation("add_finding", err)
	return f, err
}

func (m *Manager) addFinding(ctx context.Context, auditID string, in FindingInput) (*audit.Finding, error) {
	if !in.Severity.Valid() {
		return nil, audit.NewValidationError("severity", fmt.Sprintf("unknown severity %q", in.Severity))
	}
	if in.Title == "" {
		return nil, audit.NewValidationError("title", "finding title is required")
	}
	if in.SectionID == "" {
		return nil, audit.NewValidationError("section_id", "section id is required")
	}

	a, err := m.store.GetAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if a.Status != audit.StatusInProgress {
		return nil, &audit.StateError{AuditID: auditID, Status: a.Status, Op: "add_finding"}
	}

	f := &audit.Finding{
		ID:          uuid.NewString(),
		AuditID:     auditID,
		QuestionID:  in.QuestionID,
		SectionID:   in.SectionID,
		Severity:    in.Severity,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := m.store.CreateFinding(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Link links the audit to a predecessor and classifies progression.
func (m *Manager) Link(ctx context.Context, scope audit.Scope, auditID, previousAuditID string) (*linkage.LinkResult, error) {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	result, err := m.linkage.Link(ctx, scope, auditID, previousAuditID)
	m.metrics.RecordOperation("link", err)
	return result, err
}

// Unlink clears the audit's predecessor link. Idempotent.
func (m *Manager) Unlink(ctx context.Context, auditID string) error {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	err := m.linkage.Unlink(ctx, auditID)
	m.metrics.RecordOperation("unlink", err)
	return err
}

// ListLinkable returns the audits that may be linked as predecessors of
// currentAuditID.
func (m *Manager) ListLinkable(ctx context.Context, scope audit.Scope, laboratoryID, currentAuditID string) ([]*audit.Audit, error) {
	audits, err := m.linkage.ListLinkable(ctx, scope, laboratoryID, currentAuditID)
	m.metrics.RecordOperation("list_linkable", err)
	return audits, err
}

// AddMember adds a reviewer to the audit's team.
func (m *Manager) AddMember(ctx context.Context, auditID, userID string, role audit.Role) error {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	err := m.team.AddMember(ctx, auditID, userID, role)
	m.metrics.RecordOperation("add_member", err)
	return err
}

// RemoveMember removes a reviewer from the audit's team.
func (m *Manager) RemoveMember(ctx context.Context, auditID, userID string) error {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	err := m.team.RemoveMember(ctx, auditID, userID)
	m.metrics.RecordOperation("remove_member", err)
	return err
}

// ValidateComposition reports the team's role counts.
func (m *Manager) ValidateComposition(ctx context.Context, auditID string) (*team.Composition, error) {
	comp, err := m.team.ValidateComposition(ctx, auditID)
	m.metrics.RecordOperation("validate_composition", err)
	return comp, err
}

// Evaluate reports every closure blocker and warning for the audit.
func (m *Manager) Evaluate(ctx context.Context, auditID string) (*closure.Report, error) {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	report, err := m.closure.Evaluate(ctx, auditID)
	m.metrics.RecordOperation("evaluate", err)
	if err == nil {
		m.metrics.RecordClosureEvaluated(len(report.Blockers))
	}
	return report, err
}

// Close transitions the audit to completed, freezing its score.
func (m *Manager) Close(ctx context.Context, auditID string) error {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	err := m.closure.Close(ctx, auditID)
	m.metrics.RecordOperation("close", err)

	var blocked *audit.ClosureBlockedError
	if errors.As(err, &blocked) {
		m.metrics.RecordClosureBlocked()
	}
	return err
}

// Reopen transitions a completed audit back to in_progress.
func (m *Manager) Reopen(ctx context.Context, auditID, justification string) error {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	err := m.closure.Reopen(ctx, auditID, justification)
	m.metrics.RecordOperation("reopen", err)
	return err
}

// ReconcileScore recomputes the audit's score and corrects the cached star
// level when drifted (e.g. after a catalog reload). It reports whether a
// correction was applied. Completed audits keep their frozen star level.
func (m *Manager) ReconcileScore(ctx context.Context, auditID string) (bool, error) {
	lock := m.locks.forAudit(auditID)
	lock.Lock()
	defer lock.Unlock()

	a, err := m.store.GetAudit(ctx, auditID)
	if err != nil {
		return false, err
	}
	if a.Status != audit.StatusInProgress {
		return false, nil
	}

	score, err := m.scorer.Compute(ctx, auditID)
	if err != nil {
		return false, err
	}
	if a.CalculatedStarLevel == score.StarLevel {
		return false, nil
	}

	m.logger.Info("cached star level drifted",
		"audit_id", auditID,
		"cached", a.CalculatedStarLevel,
		"computed", score.StarLevel,
	)

	a.CalculatedStarLevel = score.StarLevel
	if err := m.store.UpdateAudit(ctx, a); err != nil {
		return false, err
	}
	m.metrics.RecordReconcileCorrection()
	return true, nil
}

// refreshScore recomputes the score and updates the audit's cached star
// level. Callers must hold the audit's lock.
func (m *Manager) refreshScore(ctx context.Context, auditID string) (*audit.Score, error) {
	start := m.now()
	score, err := m.scorer.Compute(ctx, auditID)
	if err != nil {
		return nil, err
	}
	m.metrics.RecordScoreComputed(m.now().Sub(start))

	a, err := m.store.GetAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if a.CalculatedStarLevel != score.StarLevel {
		a.CalculatedStarLevel = score.StarLevel
		if err := m.store.UpdateAudit(ctx, a); err != nil {
			return nil, err
		}
	}
	return score, nil
}

// transition moves the audit from one status to another.
func (m *Manager) transition(ctx context.Context, auditID string, from, to audit.Status, op string) error {
	a, err := m.store.GetAudit(ctx, auditID)
	if err != nil {
		return err
	}
	if a.Status != from {
		return &audit.StateError{AuditID: auditID, Status: a.Status, Op: op}
	}
	a.Status = to
	return m.store.UpdateAudit(ctx, a)
}
