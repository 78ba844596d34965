package audit

import "testing"

func TestAnswerValid(t *testing.T) {
	for _, a := range []Answer{AnswerYes, AnswerPartial, AnswerNo, AnswerNA} {
		if !a.Valid() {
			t.Errorf("%s.Valid() = false, want true", a)
		}
	}
	for _, a := range []Answer{"", "y", "yes", "n/a", "maybe"} {
		if a.Valid() {
			t.Errorf("%q.Valid() = true, want false", a)
		}
	}
}

func TestAnswerNonConformance(t *testing.T) {
	tests := []struct {
		answer Answer
		want   bool
	}{
		{AnswerYes, false},
		{AnswerPartial, true},
		{AnswerNo, true},
		{AnswerNA, false},
	}
	for _, tt := range tests {
		if got := tt.answer.NonConformance(); got != tt.want {
			t.Errorf("%s.NonConformance() = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestStatusAndRoleValid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusInProgress, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false, want true", s)
		}
	}
	if Status("open").Valid() {
		t.Error(`Status("open").Valid() = true, want false`)
	}

	for _, r := range []Role{RoleLead, RoleMember, RoleObserver} {
		if !r.Valid() {
			t.Errorf("%s.Valid() = false, want true", r)
		}
	}
	if Role("supervisor").Valid() {
		t.Error(`Role("supervisor").Valid() = true, want false`)
	}
}

func TestScopeAllowsLaboratory(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		lab   string
		want  bool
	}{
		{"global allows anything", GlobalScope(), "lab-1", true},
		{"listed laboratory", Scope{LaboratoryIDs: []string{"lab-1", "lab-2"}}, "lab-2", true},
		{"unlisted laboratory", Scope{LaboratoryIDs: []string{"lab-1"}}, "lab-3", false},
		{"empty scope denies", Scope{}, "lab-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.AllowsLaboratory(tt.lab); got != tt.want {
				t.Errorf("AllowsLaboratory(%s) = %v, want %v", tt.lab, got, tt.want)
			}
		})
	}
}
