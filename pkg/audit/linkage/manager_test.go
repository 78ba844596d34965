package linkage

import (
	"context"
	"errors"
	"testing"
	"time"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/storage"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func seedAudit(t *testing.T, store storage.Store, id, labID string, status audit.Status, openedOn time.Time, stars int) *audit.Audit {
	t.Helper()
	a := &audit.Audit{
		ID:                  id,
		LaboratoryID:        labID,
		Status:              status,
		OpenedOn:            openedOn,
		CalculatedStarLevel: stars,
	}
	if err := store.CreateAudit(context.Background(), a); err != nil {
		t.Fatalf("CreateAudit(%s): %v", id, err)
	}
	return a
}

func TestLinkProgression(t *testing.T) {
	tests := []struct {
		name          string
		currentStars  int
		previousStars int
		want          Progression
	}{
		{"improved", 4, 2, ProgressionImproved},
		{"maintained", 3, 3, ProgressionMaintained},
		{"declined", 1, 3, ProgressionDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			seedAudit(t, store, "prev", "lab-1", audit.StatusCompleted, day(1), tt.previousStars)
			seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(10), tt.currentStars)
			m := NewManager(store)

			result, err := m.Link(context.Background(), audit.GlobalScope(), "cur", "prev")
			if err != nil {
				t.Fatalf("Link: %v", err)
			}
			if result.Progression != tt.want {
				t.Errorf("Progression = %s, want %s", result.Progression, tt.want)
			}
			if result.CurrentStarLevel != tt.currentStars || result.PreviousStarLevel != tt.previousStars {
				t.Errorf("star levels = %d/%d, want %d/%d",
					result.CurrentStarLevel, result.PreviousStarLevel, tt.currentStars, tt.previousStars)
			}

			linked, err := store.GetAudit(context.Background(), "cur")
			if err != nil {
				t.Fatalf("GetAudit: %v", err)
			}
			if linked.PreviousAuditID != "prev" {
				t.Errorf("PreviousAuditID = %q, want prev", linked.PreviousAuditID)
			}
		})
	}
}

func TestLinkRejectsSelfLink(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "a", "lab-1", audit.StatusCompleted, day(1), 2)
	m := NewManager(store)

	_, err := m.Link(context.Background(), audit.GlobalScope(), "a", "a")
	var verr *audit.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Link = %v, want ValidationError", err)
	}
}

func TestLinkRejectsDirectCycle(t *testing.T) {
	// X opened in January, Y opened in March, Y already points at X.
	// Linking X to Y would close the loop.
	store := storage.NewMemoryStore()
	seedAudit(t, store, "x", "lab-1", audit.StatusCompleted, day(5), 3)
	y := seedAudit(t, store, "y", "lab-1", audit.StatusCompleted, day(25), 4)
	y.PreviousAuditID = "x"
	if err := store.UpdateAudit(context.Background(), y); err != nil {
		t.Fatalf("UpdateAudit: %v", err)
	}
	m := NewManager(store)

	_, err := m.Link(context.Background(), audit.GlobalScope(), "x", "y")
	var cerr *audit.CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("Link = %v, want CycleError", err)
	}
	if cerr.AuditID != "x" || cerr.PreviousAuditID != "y" {
		t.Errorf("CycleError ids = %s/%s, want x/y", cerr.AuditID, cerr.PreviousAuditID)
	}
}

func TestLinkRejectsTransitiveCycle(t *testing.T) {
	// c -> b -> a; linking a to c would form a three-audit loop.
	store := storage.NewMemoryStore()
	seedAudit(t, store, "a", "lab-1", audit.StatusCompleted, day(1), 1)
	b := seedAudit(t, store, "b", "lab-1", audit.StatusCompleted, day(10), 2)
	c := seedAudit(t, store, "c", "lab-1", audit.StatusCompleted, day(20), 3)
	b.PreviousAuditID = "a"
	c.PreviousAuditID = "b"
	for _, a := range []*audit.Audit{b, c} {
		if err := store.UpdateAudit(context.Background(), a); err != nil {
			t.Fatalf("UpdateAudit: %v", err)
		}
	}
	m := NewManager(store)

	_, err := m.Link(context.Background(), audit.GlobalScope(), "a", "c")
	var cerr *audit.CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("Link = %v, want CycleError", err)
	}
}

func TestLinkRejectsCrossLaboratory(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "prev", "lab-1", audit.StatusCompleted, day(1), 2)
	seedAudit(t, store, "cur", "lab-2", audit.StatusInProgress, day(10), 0)
	m := NewManager(store)

	_, err := m.Link(context.Background(), audit.GlobalScope(), "cur", "prev")
	var serr *audit.ScopeViolationError
	if !errors.As(err, &serr) {
		t.Fatalf("Link = %v, want ScopeViolationError", err)
	}
}

func TestLinkRejectsOutOfScope(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "prev", "lab-1", audit.StatusCompleted, day(1), 2)
	seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(10), 0)
	m := NewManager(store)

	scope := audit.Scope{LaboratoryIDs: []string{"lab-9"}}
	_, err := m.Link(context.Background(), scope, "cur", "prev")
	var serr *audit.ScopeViolationError
	if !errors.As(err, &serr) {
		t.Fatalf("Link = %v, want ScopeViolationError", err)
	}
}

func TestLinkRejectsUnscoredPredecessor(t *testing.T) {
	for _, status := range []audit.Status{audit.StatusDraft, audit.StatusInProgress, audit.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			store := storage.NewMemoryStore()
			seedAudit(t, store, "prev", "lab-1", status, day(1), 0)
			seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(10), 0)
			m := NewManager(store)

			_, err := m.Link(context.Background(), audit.GlobalScope(), "cur", "prev")
			var uerr *audit.UnscoredPredecessorError
			if !errors.As(err, &uerr) {
				t.Fatalf("Link = %v, want UnscoredPredecessorError", err)
			}
		})
	}
}

func TestLinkRejectsUnknownAudit(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(10), 0)
	m := NewManager(store)

	if _, err := m.Link(context.Background(), audit.GlobalScope(), "cur", "missing"); err == nil {
		t.Error("Link with unknown predecessor: expected error, got nil")
	}
	if _, err := m.Link(context.Background(), audit.GlobalScope(), "missing", "cur"); err == nil {
		t.Error("Link with unknown current: expected error, got nil")
	}
}

func TestUnlinkIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "prev", "lab-1", audit.StatusCompleted, day(1), 2)
	seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(10), 0)
	m := NewManager(store)
	ctx := context.Background()

	if _, err := m.Link(ctx, audit.GlobalScope(), "cur", "prev"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := m.Unlink(ctx, "cur"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	a, err := store.GetAudit(ctx, "cur")
	if err != nil {
		t.Fatalf("GetAudit: %v", err)
	}
	if a.PreviousAuditID != "" {
		t.Errorf("PreviousAuditID = %q after unlink, want empty", a.PreviousAuditID)
	}

	// Second unlink is a no-op, not an error.
	if err := m.Unlink(ctx, "cur"); err != nil {
		t.Errorf("second Unlink: %v", err)
	}
}

func TestLinkUnlinkRelink(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "prev", "lab-1", audit.StatusCompleted, day(1), 2)
	seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(10), 0)
	m := NewManager(store)
	ctx := context.Background()

	if _, err := m.Link(ctx, audit.GlobalScope(), "cur", "prev"); err != nil {
		t.Fatalf("first Link: %v", err)
	}
	if err := m.Unlink(ctx, "cur"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if _, err := m.Link(ctx, audit.GlobalScope(), "cur", "prev"); err != nil {
		t.Fatalf("relink: %v", err)
	}
}

func TestListLinkable(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "old", "lab-1", audit.StatusCompleted, day(1), 2)
	seedAudit(t, store, "mid", "lab-1", audit.StatusCompleted, day(10), 3)
	cycler := seedAudit(t, store, "cycler", "lab-1", audit.StatusCompleted, day(15), 3)
	seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(20), 0)
	seedAudit(t, store, "other-lab", "lab-2", audit.StatusCompleted, day(5), 1)

	// cycler already points at cur, so linking cur to cycler would loop.
	cycler.PreviousAuditID = "cur"
	if err := store.UpdateAudit(context.Background(), cycler); err != nil {
		t.Fatalf("UpdateAudit: %v", err)
	}

	m := NewManager(store)
	linkable, err := m.ListLinkable(context.Background(), audit.GlobalScope(), "lab-1", "cur")
	if err != nil {
		t.Fatalf("ListLinkable: %v", err)
	}

	got := make([]string, 0, len(linkable))
	for _, a := range linkable {
		got = append(got, a.ID)
	}
	want := []string{"mid", "old"}
	if len(got) != len(want) {
		t.Fatalf("linkable = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("linkable[%d] = %s, want %s (ordered by OpenedOn desc)", i, got[i], want[i])
		}
	}
}

func TestListLinkableOutOfScope(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAudit(t, store, "cur", "lab-1", audit.StatusInProgress, day(20), 0)
	m := NewManager(store)

	scope := audit.Scope{LaboratoryIDs: []string{"lab-2"}}
	_, err := m.ListLinkable(context.Background(), scope, "lab-1", "cur")
	var serr *audit.ScopeViolationError
	if !errors.As(err, &serr) {
		t.Fatalf("ListLinkable = %v, want ScopeViolationError", err)
	}
}
