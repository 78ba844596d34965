package reconcile

import (
	"context"
	"fmt"
	"testing"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/composite"
	"labtrust-hq/calibra/pkg/audit/engine"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/catalog"
)

func twoQuestionCatalog(t *testing.T, version string, ids ...string) *catalog.Catalog {
	t.Helper()
	questions := make([]catalog.Question, 0, len(ids))
	for i, id := range ids {
		questions = append(questions, catalog.Question{ID: id, QCode: fmt.Sprintf("%d.1", i+1), Weight: 5})
	}
	c, err := catalog.New(version, []catalog.Section{
		{ID: "s1", Questions: questions},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func TestSweepCorrectsDriftedScores(t *testing.T) {
	store := storage.NewMemoryStore()
	m, err := engine.New(engine.Config{
		Catalog: twoQuestionCatalog(t, "v1", "q1", "q2"),
		Store:   store,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	ctx := context.Background()

	// Two in-progress audits with q1 answered Y: 5 of 10 each, zero stars.
	var ids []string
	for i := 0; i < 2; i++ {
		a, err := m.CreateAudit(ctx, "lab-1", "")
		if err != nil {
			t.Fatalf("CreateAudit: %v", err)
		}
		if err := m.StartAudit(ctx, a.ID); err != nil {
			t.Fatalf("StartAudit: %v", err)
		}
		if _, err := m.SetAnswer(ctx, a.ID, "q1", composite.SetAnswerInput{Answer: audit.AnswerYes}); err != nil {
			t.Fatalf("SetAnswer: %v", err)
		}
		ids = append(ids, a.ID)
	}

	// A draft audit is skipped by the sweep.
	if _, err := m.CreateAudit(ctx, "lab-1", ""); err != nil {
		t.Fatalf("CreateAudit: %v", err)
	}

	// Dropping q2 from the catalog turns 5/10 into 5/5: every cached star
	// level is now stale.
	m.SwapCatalog(twoQuestionCatalog(t, "v2", "q1"))

	s := NewScheduler(m, store, Config{})
	corrected, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if corrected != 2 {
		t.Errorf("corrected = %d, want 2", corrected)
	}

	for _, id := range ids {
		a, err := m.GetAudit(ctx, id)
		if err != nil {
			t.Fatalf("GetAudit: %v", err)
		}
		if a.CalculatedStarLevel != 5 {
			t.Errorf("audit %s CalculatedStarLevel = %d, want 5", id, a.CalculatedStarLevel)
		}
	}

	// Nothing left to fix.
	corrected, err = s.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if corrected != 0 {
		t.Errorf("corrected = %d on second sweep, want 0", corrected)
	}
}

func TestStartWithEmptySchedule(t *testing.T) {
	store := storage.NewMemoryStore()
	m, err := engine.New(engine.Config{
		Catalog: twoQuestionCatalog(t, "v1", "q1"),
		Store:   store,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	s := NewScheduler(m, store, Config{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start with empty schedule: %v", err)
	}
	s.Stop()
}

func TestStartWithInvalidSchedule(t *testing.T) {
	store := storage.NewMemoryStore()
	m, err := engine.New(engine.Config{
		Catalog: twoQuestionCatalog(t, "v1", "q1"),
		Store:   store,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	s := NewScheduler(m, store, Config{Schedule: "not a cron expression"})
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start with invalid schedule succeeded, want error")
	}
}

func TestStartAndStopWithValidSchedule(t *testing.T) {
	store := storage.NewMemoryStore()
	m, err := engine.New(engine.Config{
		Catalog: twoQuestionCatalog(t, "v1", "q1"),
		Store:   store,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(m, store, Config{Schedule: "0 3 * * *"})
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	// Stop is idempotent.
	s.Stop()
}
