package composite

import (
	"context"
	"errors"
	"testing"
	"time"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/catalog"
)

func compositeCatalog(t *testing.T) catalog.Provider {
	t.Helper()
	c, err := catalog.New("test-v1", []catalog.Section{
		{
			ID:    "s1",
			Title: "Section One",
			Questions: []catalog.Question{
				{
					ID:                    "q-composite",
					QCode:                 "1.1",
					Weight:                3,
					RequiresAllSubsForYes: true,
					SubQuestions: []catalog.SubQuestion{
						{ID: "sub-a", SubCode: "a", Text: "first sub-item"},
						{ID: "sub-b", SubCode: "b", Text: "second sub-item"},
					},
				},
				{ID: "q-plain", QCode: "1.2", Weight: 2},
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return catalog.Static(c)
}

func setupValidator(t *testing.T) (*Validator, storage.Store, *audit.Audit) {
	t.Helper()
	store := storage.NewMemoryStore()
	a := &audit.Audit{
		ID:           "audit-1",
		LaboratoryID: "lab-1",
		Status:       audit.StatusInProgress,
		OpenedOn:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.CreateAudit(context.Background(), a); err != nil {
		t.Fatalf("failed to create audit: %v", err)
	}
	return NewValidator(compositeCatalog(t), store), store, a
}

func TestSetAnswerYesOnCompositeRejectedWhenSubsUnsatisfied(t *testing.T) {
	v, store, a := setupValidator(t)
	ctx := context.Background()

	// One sub N, one sub Y: the composite rule forbids a parent Y.
	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-a", audit.AnswerNo); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-b", audit.AnswerYes); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}

	err := v.SetAnswer(ctx, a.ID, "q-composite", SetAnswerInput{Answer: audit.AnswerYes})
	var violation *audit.CompositeRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("SetAnswer = %v, want CompositeRuleViolation", err)
	}
	if len(violation.Unsatisfied) != 1 || violation.Unsatisfied[0] != "sub-a" {
		t.Errorf("Unsatisfied = %v, want [sub-a]", violation.Unsatisfied)
	}

	// The rejected answer must not be persisted.
	if _, err := store.GetResponse(ctx, a.ID, "q-composite"); err == nil {
		t.Error("rejected answer was persisted")
	}
}

func TestSetAnswerYesOnCompositeRejectedWhenSubsUnanswered(t *testing.T) {
	v, _, a := setupValidator(t)
	ctx := context.Background()

	err := v.SetAnswer(ctx, a.ID, "q-composite", SetAnswerInput{Answer: audit.AnswerYes})
	var violation *audit.CompositeRuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("SetAnswer = %v, want CompositeRuleViolation", err)
	}
	if len(violation.Unsatisfied) != 2 {
		t.Errorf("Unsatisfied = %v, want both unanswered subs", violation.Unsatisfied)
	}
}

func TestSetAnswerYesOnCompositeAcceptedWhenSubsSatisfied(t *testing.T) {
	v, store, a := setupValidator(t)
	ctx := context.Background()

	// Y and NA both satisfy the composite rule.
	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-a", audit.AnswerYes); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-b", audit.AnswerNA); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}

	if err := v.SetAnswer(ctx, a.ID, "q-composite", SetAnswerInput{Answer: audit.AnswerYes}); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	r, err := store.GetResponse(ctx, a.ID, "q-composite")
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if r.Answer != audit.AnswerYes {
		t.Errorf("Answer = %s, want Y", r.Answer)
	}
}

func TestSetAnswerCommentRules(t *testing.T) {
	tests := []struct {
		name    string
		input   SetAnswerInput
		wantErr bool
	}{
		{"yes needs nothing", SetAnswerInput{Answer: audit.AnswerYes}, false},
		{"partial without comment", SetAnswerInput{Answer: audit.AnswerPartial}, true},
		{"partial with comment", SetAnswerInput{Answer: audit.AnswerPartial, Comment: "SOP incomplete"}, false},
		{"no without comment", SetAnswerInput{Answer: audit.AnswerNo}, true},
		{"no with comment", SetAnswerInput{Answer: audit.AnswerNo, Comment: "not implemented"}, false},
		{"na without justification", SetAnswerInput{Answer: audit.AnswerNA, Comment: "no such instrument"}, true},
		{"na without comment", SetAnswerInput{Answer: audit.AnswerNA, NAJustification: "lab does not run this assay"}, true},
		{"na complete", SetAnswerInput{Answer: audit.AnswerNA, Comment: "no such instrument", NAJustification: "lab does not run this assay"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, a := setupValidator(t)
			err := v.SetAnswer(context.Background(), a.ID, "q-plain", tt.input)
			if tt.wantErr {
				var verr *audit.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("SetAnswer = %v, want ValidationError", err)
				}
			} else if err != nil {
				t.Errorf("SetAnswer: %v", err)
			}
		})
	}
}

func TestSetAnswerRejectsInvalidAnswer(t *testing.T) {
	v, _, a := setupValidator(t)
	err := v.SetAnswer(context.Background(), a.ID, "q-plain", SetAnswerInput{Answer: audit.Answer("maybe")})
	var verr *audit.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("SetAnswer = %v, want ValidationError", err)
	}
}

func TestSetAnswerRejectsUnknownQuestion(t *testing.T) {
	v, _, a := setupValidator(t)
	err := v.SetAnswer(context.Background(), a.ID, "q-missing", SetAnswerInput{Answer: audit.AnswerYes})
	var nf *audit.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("SetAnswer = %v, want NotFoundError", err)
	}
}

func TestSetAnswerRejectsAuditNotInProgress(t *testing.T) {
	for _, status := range []audit.Status{audit.StatusDraft, audit.StatusCompleted, audit.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			store := storage.NewMemoryStore()
			a := &audit.Audit{
				ID:           "audit-1",
				LaboratoryID: "lab-1",
				Status:       status,
				OpenedOn:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			}
			if err := store.CreateAudit(context.Background(), a); err != nil {
				t.Fatalf("CreateAudit: %v", err)
			}
			v := NewValidator(compositeCatalog(t), store)

			err := v.SetAnswer(context.Background(), a.ID, "q-plain", SetAnswerInput{Answer: audit.AnswerYes})
			var serr *audit.StateError
			if !errors.As(err, &serr) {
				t.Errorf("SetAnswer = %v, want StateError", err)
			}
		})
	}
}

func TestSetSubAnswerDowngradesParentYes(t *testing.T) {
	v, store, a := setupValidator(t)
	ctx := context.Background()

	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-a", audit.AnswerYes); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-b", audit.AnswerYes); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if err := v.SetAnswer(ctx, a.ID, "q-composite", SetAnswerInput{Answer: audit.AnswerYes, Comment: "all items in place"}); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	// Flipping a sub to N must pull the parent down to P.
	result, err := v.SetSubAnswer(ctx, a.ID, "sub-b", audit.AnswerNo)
	if err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if !result.ParentInvalidated {
		t.Fatal("ParentInvalidated = false, want true")
	}
	if result.NewParentAnswer != audit.AnswerPartial {
		t.Errorf("NewParentAnswer = %s, want P", result.NewParentAnswer)
	}

	parent, err := store.GetResponse(ctx, a.ID, "q-composite")
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if parent.Answer != audit.AnswerPartial {
		t.Errorf("parent Answer = %s, want P", parent.Answer)
	}
	if parent.Comment != "all items in place" {
		t.Errorf("parent Comment = %q, want preserved", parent.Comment)
	}
}

func TestSetSubAnswerDoesNotTouchNonYesParent(t *testing.T) {
	v, store, a := setupValidator(t)
	ctx := context.Background()

	if err := v.SetAnswer(ctx, a.ID, "q-composite", SetAnswerInput{Answer: audit.AnswerPartial, Comment: "partially met"}); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	result, err := v.SetSubAnswer(ctx, a.ID, "sub-a", audit.AnswerNo)
	if err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if result.ParentInvalidated {
		t.Error("ParentInvalidated = true for a non-Y parent")
	}

	parent, err := store.GetResponse(ctx, a.ID, "q-composite")
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if parent.Answer != audit.AnswerPartial {
		t.Errorf("parent Answer = %s, want P unchanged", parent.Answer)
	}
}

func TestSetSubAnswerWithoutParentResponse(t *testing.T) {
	v, _, a := setupValidator(t)

	result, err := v.SetSubAnswer(context.Background(), a.ID, "sub-a", audit.AnswerNo)
	if err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if !result.Updated {
		t.Error("Updated = false, want true")
	}
	if result.ParentInvalidated {
		t.Error("ParentInvalidated = true with no parent response")
	}
}

func TestSetSubAnswerRejectsUnknownSubQuestion(t *testing.T) {
	v, _, a := setupValidator(t)
	_, err := v.SetSubAnswer(context.Background(), a.ID, "sub-missing", audit.AnswerYes)
	var nf *audit.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("SetSubAnswer = %v, want NotFoundError", err)
	}
}

func TestCheckQuestion(t *testing.T) {
	v, _, a := setupValidator(t)
	ctx := context.Background()

	cat := compositeCatalog(t).Current()
	q, _ := cat.Question("q-composite")

	unsatisfied, err := v.CheckQuestion(ctx, a.ID, q)
	if err != nil {
		t.Fatalf("CheckQuestion: %v", err)
	}
	if len(unsatisfied) != 2 {
		t.Errorf("unsatisfied = %v, want both subs", unsatisfied)
	}

	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-a", audit.AnswerYes); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	if _, err := v.SetSubAnswer(ctx, a.ID, "sub-b", audit.AnswerNA); err != nil {
		t.Fatalf("SetSubAnswer: %v", err)
	}
	unsatisfied, err = v.CheckQuestion(ctx, a.ID, q)
	if err != nil {
		t.Fatalf("CheckQuestion: %v", err)
	}
	if len(unsatisfied) != 0 {
		t.Errorf("unsatisfied = %v, want none", unsatisfied)
	}

	plain, _ := cat.Question("q-plain")
	unsatisfied, err = v.CheckQuestion(ctx, a.ID, plain)
	if err != nil {
		t.Fatalf("CheckQuestion: %v", err)
	}
	if unsatisfied != nil {
		t.Errorf("unsatisfied = %v for a non-composite question, want nil", unsatisfied)
	}
}
