package composite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/catalog"
)

// SetAnswerInput carries the fields of a response write.
type SetAnswerInput struct {
	// Answer is the new answer value.
	Answer audit.Answer

	// Comment is required for P, N, and NA answers.
	Comment string

	// NAJustification is required for NA answers.
	NAJustification string

	// EvidenceRefs optionally attaches evidence file references.
	EvidenceRefs []string
}

// SubAnswerResult reports the outcome of a sub-response write.
type SubAnswerResult struct {
	// Updated is true when the sub-response was written.
	Updated bool

	// ParentInvalidated is true when the write downgraded the composite
	// parent's Y answer. Callers should surface this to the auditor.
	ParentInvalidated bool

	// NewParentAnswer is the parent's answer after the write, set only when
	// ParentInvalidated is true.
	NewParentAnswer audit.Answer
}

// Validator enforces composite-question rules and writes responses.
type Validator struct {
	catalogs catalog.Provider
	store    storage.Store
	logger   *slog.Logger
}

// NewValidator creates a composite validator.
func NewValidator(catalogs catalog.Provider, store storage.Store) *Validator {
	return &Validator{
		catalogs: catalogs,
		store:    store,
		logger:   slog.Default().With("component", "audit.composite"),
	}
}

// SetAnswer validates and writes a question response.
//
// It rejects Y on a composite question unless every sub-response is already
// Y or NA (CompositeRuleViolation), rejects P/N/NA without a comment and NA
// without a justification (ValidationError), and rejects writes to audits
// that are not in progress (StateError).
func (v *Validator) SetAnswer(ctx context.Context, auditID, questionID string, in SetAnswerInput) error {
	if !in.Answer.Valid() {
		return audit.NewValidationError("answer", fmt.Sprintf("unknown answer value %q", in.Answer))
	}

	a, err := v.store.GetAudit(ctx, auditID)
	if err != nil {
		return err
	}
	if a.Status != audit.StatusInProgress {
		return &audit.StateError{AuditID: auditID, Status: a.Status, Op: "set_answer"}
	}

	cat := v.catalogs.Current()
	q, ok := cat.Question(questionID)
	if !ok {
		return audit.NewNotFoundError("question", questionID)
	}

	if err := validateCommentRules(in); err != nil {
		return err
	}

	if in.Answer == audit.AnswerYes && q.RequiresAllSubsForYes {
		unsatisfied, err := v.unsatisfiedSubs(ctx, auditID, q)
		if err != nil {
			return err
		}
		if len(unsatisfied) > 0 {
			return &audit.CompositeRuleViolation{
				AuditID:     auditID,
				QuestionID:  questionID,
				Unsatisfied: unsatisfied,
			}
		}
	}

	return v.store.PutResponse(ctx, &audit.Response{
		AuditID:         auditID,
		QuestionID:      questionID,
		Answer:          in.Answer,
		Comment:         in.Comment,
		NAJustification: in.NAJustification,
		EvidenceRefs:    in.EvidenceRefs,
	})
}

// SetSubAnswer validates and writes a sub-question response, downgrading a
// composite parent's Y answer to P when the new sub-answer invalidates it.
// The parent's comment is deliberately left untouched.
func (v *Validator) SetSubAnswer(ctx context.Context, auditID, subQuestionID string, answer audit.Answer) (*SubAnswerResult, error) {
	if !answer.Valid() {
		return nil, audit.NewValidationError("answer", fmt.Sprintf("unknown answer value %q", answer))
	}

	a, err := v.store.GetAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if a.Status != audit.StatusInProgress {
		return nil, &audit.StateError{AuditID: auditID, Status: a.Status, Op: "set_sub_answer"}
	}

	cat := v.catalogs.Current()
	if _, ok := cat.SubQuestion(subQuestionID); !ok {
		return nil, audit.NewNotFoundError("sub_question", subQuestionID)
	}

	if err := v.store.PutSubResponse(ctx, &audit.SubResponse{
		AuditID:       auditID,
		SubQuestionID: subQuestionID,
		Answer:        answer,
	}); err != nil {
		return nil, err
	}

	result := &SubAnswerResult{Updated: true}

	if !answer.NonConformance() {
		return result, nil
	}
	parent, ok := cat.Parent(subQuestionID)
	if !ok || !parent.RequiresAllSubsForYes {
		return result, nil
	}

	parentResp, err := v.store.GetResponse(ctx, auditID, parent.ID)
	if err != nil {
		var notFound *audit.NotFoundError
		if errors.As(err, &notFound) {
			return result, nil
		}
		return nil, err
	}
	if parentResp.Answer != audit.AnswerYes {
		return result, nil
	}

	parentResp.Answer = audit.AnswerPartial
	if err := v.store.PutResponse(ctx, parentResp); err != nil {
		return nil, err
	}

	v.logger.Info("composite parent downgraded",
		"audit_id", auditID,
		"question_id", parent.ID,
		"sub_question_id", subQuestionID,
		"sub_answer", answer,
	)

	result.ParentInvalidated = true
	result.NewParentAnswer = audit.AnswerPartial
	return result, nil
}

// CheckQuestion reports the sub-question IDs that invalidate a Y answer on
// the given question, or nil when the composite rule is satisfied. The
// closure validator uses it as a defensive re-check.
func (v *Validator) CheckQuestion(ctx context.Context, auditID string, q *catalog.Question) ([]string, error) {
	if !q.RequiresAllSubsForYes {
		return nil, nil
	}
	return v.unsatisfiedSubs(ctx, auditID, q)
}

// unsatisfiedSubs returns the IDs of sub-questions not answered Y or NA,
// including unanswered ones.
func (v *Validator) unsatisfiedSubs(ctx context.Context, auditID string, q *catalog.Question) ([]string, error) {
	subResponses, err := v.store.ListSubResponses(ctx, auditID)
	if err != nil {
		return nil, err
	}
	bySub := make(map[string]*audit.SubResponse, len(subResponses))
	for _, r := range subResponses {
		bySub[r.SubQuestionID] = r
	}

	var unsatisfied []string
	for _, sub := range q.SubQuestions {
		r, answered := bySub[sub.ID]
		if !answered || (r.Answer != audit.AnswerYes && r.Answer != audit.AnswerNA) {
			unsatisfied = append(unsatisfied, sub.ID)
		}
	}
	return unsatisfied, nil
}

// validateCommentRules enforces the comment discipline: P/N/NA require a
// comment, NA additionally requires a justification.
func validateCommentRules(in SetAnswerInput) error {
	switch in.Answer {
	case audit.AnswerPartial, audit.AnswerNo:
		if in.Comment == "" {
			return audit.NewValidationError("comment",
				fmt.Sprintf("a comment is required for %s answers", in.Answer))
		}
	case audit.AnswerNA:
		if in.Comment == "" {
			return audit.NewValidationError("comment", "a comment is required for NA answers")
		}
		if in.NAJustification == "" {
			return audit.NewValidationError("na_justification", "NA answers require a justification")
		}
	}
	return nil
}
