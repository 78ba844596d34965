package scoring

import (
	"context"
	"testing"
	"time"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/catalog"
)

func testCatalog(t *testing.T, questions []catalog.Question) catalog.Provider {
	t.Helper()
	c, err := catalog.New("test-v1", []catalog.Section{
		{ID: "s1", Title: "Section One", Questions: questions},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return catalog.Static(c)
}

func newTestAudit(t *testing.T, store storage.Store) *audit.Audit {
	t.Helper()
	a := &audit.Audit{
		ID:           "audit-1",
		LaboratoryID: "lab-1",
		Status:       audit.StatusInProgress,
		OpenedOn:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := store.CreateAudit(context.Background(), a); err != nil {
		t.Fatalf("failed to create audit: %v", err)
	}
	return a
}

func putAnswer(t *testing.T, store storage.Store, auditID, questionID string, answer audit.Answer) {
	t.Helper()
	err := store.PutResponse(context.Background(), &audit.Response{
		AuditID:    auditID,
		QuestionID: questionID,
		Answer:     answer,
		Comment:    "recorded during test setup",
	})
	if err != nil {
		t.Fatalf("failed to put response: %v", err)
	}
}

func TestComputeBasicScoring(t *testing.T) {
	catalogs := testCatalog(t, []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 2},
		{ID: "q2", QCode: "1.2", Weight: 3},
		{ID: "q3", QCode: "1.3", Weight: 5},
	})
	store := storage.NewMemoryStore()
	a := newTestAudit(t, store)

	putAnswer(t, store, a.ID, "q1", audit.AnswerYes)
	putAnswer(t, store, a.ID, "q2", audit.AnswerNo)
	putAnswer(t, store, a.ID, "q3", audit.AnswerYes)

	engine, err := NewEngine(catalogs, store, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	score, err := engine.Compute(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if score.Earned != 7 {
		t.Errorf("Earned = %v, want 7", score.Earned)
	}
	if score.AdjustedDenominator != 10 {
		t.Errorf("AdjustedDenominator = %d, want 10", score.AdjustedDenominator)
	}
	if score.Percentage != 70.0 {
		t.Errorf("Percentage = %v, want 70.0", score.Percentage)
	}
	if score.StarLevel != 2 {
		t.Errorf("StarLevel = %d, want 2", score.StarLevel)
	}
}

func TestComputeNAExcludedFromDenominator(t *testing.T) {
	catalogs := testCatalog(t, []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 4},
		{ID: "q2", QCode: "1.2", Weight: 6},
	})
	store := storage.NewMemoryStore()
	a := newTestAudit(t, store)

	putAnswer(t, store, a.ID, "q1", audit.AnswerYes)
	putAnswer(t, store, a.ID, "q2", audit.AnswerNA)

	engine, err := NewEngine(catalogs, store, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	score, err := engine.Compute(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if score.NAPointsExcluded != 6 {
		t.Errorf("NAPointsExcluded = %d, want 6", score.NAPointsExcluded)
	}
	if score.AdjustedDenominator != 4 {
		t.Errorf("AdjustedDenominator = %d, want 4", score.AdjustedDenominator)
	}
	if score.Percentage != 100.0 {
		t.Errorf("Percentage = %v, want 100.0", score.Percentage)
	}
	if score.StarLevel != 5 {
		t.Errorf("StarLevel = %d, want 5", score.StarLevel)
	}
}

func TestComputeUnansweredStaysInDenominator(t *testing.T) {
	catalogs := testCatalog(t, []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 5},
		{ID: "q2", QCode: "1.2", Weight: 5},
	})
	store := storage.NewMemoryStore()
	a := newTestAudit(t, store)

	putAnswer(t, store, a.ID, "q1", audit.AnswerYes)

	engine, err := NewEngine(catalogs, store, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	score, err := engine.Compute(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if score.AdjustedDenominator != 10 {
		t.Errorf("AdjustedDenominator = %d, want 10 (unanswered question must count)", score.AdjustedDenominator)
	}
	if score.Percentage != 50.0 {
		t.Errorf("Percentage = %v, want 50.0", score.Percentage)
	}
}

func TestComputePartialCredit(t *testing.T) {
	questions := []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 10},
	}
	store := storage.NewMemoryStore()
	a := newTestAudit(t, store)
	putAnswer(t, store, a.ID, "q1", audit.AnswerPartial)

	tests := []struct {
		name          string
		partialCredit float64
		wantEarned    float64
	}{
		{"no credit", 0, 0},
		{"half credit", 0.5, 5},
		{"full credit", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(testCatalog(t, questions), store, Config{PartialCredit: tt.partialCredit})
			if err != nil {
				t.Fatalf("NewEngine: %v", err)
			}
			score, err := engine.Compute(context.Background(), a.ID)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if score.Earned != tt.wantEarned {
				t.Errorf("Earned = %v, want %v", score.Earned, tt.wantEarned)
			}
		})
	}
}

func TestComputeRoundingScenario(t *testing.T) {
	// 300 of an adjusted 362 is 82.87...%, which must round to 82.9 and
	// band at three stars.
	catalogs := testCatalog(t, []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 300},
		{ID: "q2", QCode: "1.2", Weight: 5},
		{ID: "q3", QCode: "1.3", Weight: 62},
	})
	store := storage.NewMemoryStore()
	a := newTestAudit(t, store)

	putAnswer(t, store, a.ID, "q1", audit.AnswerYes)
	putAnswer(t, store, a.ID, "q2", audit.AnswerNA)
	putAnswer(t, store, a.ID, "q3", audit.AnswerNo)

	engine, err := NewEngine(catalogs, store, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	score, err := engine.Compute(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if score.AdjustedDenominator != 362 {
		t.Fatalf("AdjustedDenominator = %d, want 362", score.AdjustedDenominator)
	}
	if score.Percentage != 82.9 {
		t.Errorf("Percentage = %v, want 82.9", score.Percentage)
	}
	if score.StarLevel != 3 {
		t.Errorf("StarLevel = %d, want 3", score.StarLevel)
	}
}

func TestComputeAllNAYieldsZeroScore(t *testing.T) {
	catalogs := testCatalog(t, []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 3},
		{ID: "q2", QCode: "1.2", Weight: 7},
	})
	store := storage.NewMemoryStore()
	a := newTestAudit(t, store)

	putAnswer(t, store, a.ID, "q1", audit.AnswerNA)
	putAnswer(t, store, a.ID, "q2", audit.AnswerNA)

	engine, err := NewEngine(catalogs, store, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	score, err := engine.Compute(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if score.AdjustedDenominator != 0 {
		t.Errorf("AdjustedDenominator = %d, want 0", score.AdjustedDenominator)
	}
	if score.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", score.Percentage)
	}
	if score.StarLevel != 0 {
		t.Errorf("StarLevel = %d, want 0", score.StarLevel)
	}
}

func TestComputeUnknownAudit(t *testing.T) {
	catalogs := testCatalog(t, []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 1},
	})
	store := storage.NewMemoryStore()

	engine, err := NewEngine(catalogs, store, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := engine.Compute(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown audit, got nil")
	}
}

func TestNewEngineRejectsBadPartialCredit(t *testing.T) {
	catalogs := testCatalog(t, []catalog.Question{
		{ID: "q1", QCode: "1.1", Weight: 1},
	})
	store := storage.NewMemoryStore()

	for _, credit := range []float64{-0.1, 1.1} {
		if _, err := NewEngine(catalogs, store, Config{PartialCredit: credit}); err == nil {
			t.Errorf("NewEngine with partial credit %v: expected error, got nil", credit)
		}
	}
}
