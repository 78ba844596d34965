package storage

import (
	"context"
	"sort"
	"sync"

	"labtrust-hq/calibra/pkg/audit"
)

// MemoryStore implements Store using in-memory maps. It is intended for
// testing and ephemeral tooling, not production deployments.
type MemoryStore struct {
	mu           sync.RWMutex
	audits       map[string]*audit.Audit
	responses    map[string]map[string]*audit.Response    // auditID -> questionID
	subResponses map[string]map[string]*audit.SubResponse // auditID -> subQuestionID
	team         map[string]map[string]*audit.TeamMember  // auditID -> userID
	findings     map[string][]*audit.Finding              // auditID -> findings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		audits:       make(map[string]*audit.Audit),
		responses:    make(map[string]map[string]*audit.Response),
		subResponses: make(map[string]map[string]*audit.SubResponse),
		team:         make(map[string]map[string]*audit.TeamMember),
		findings:     make(map[string][]*audit.Finding),
	}
}

// CreateAudit implements Store.
func (s *MemoryStore) CreateAudit(ctx context.Context, a *audit.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auditCopy := *a
	s.audits[a.ID] = &auditCopy
	return nil
}

// GetAudit implements Store.
func (s *MemoryStore) GetAudit(ctx context.Context, id string) (*audit.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.audits[id]
	if !ok {
		return nil, audit.NewNotFoundError("audit", id)
	}
	auditCopy := *a
	return &auditCopy, nil
}

// UpdateAudit implements Store.
func (s *MemoryStore) UpdateAudit(ctx context.Context, a *audit.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.audits[a.ID]; !ok {
		return audit.NewNotFoundError("audit", a.ID)
	}
	auditCopy := *a
	s.audits[a.ID] = &auditCopy
	return nil
}

// ListAudits implements Store.
func (s *MemoryStore) ListAudits(ctx context.Context) ([]*audit.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*audit.Audit, 0, len(s.audits))
	for _, a := range s.audits {
		auditCopy := *a
		out = append(out, &auditCopy)
	}
	sortAuditsByOpenedOnDesc(out)
	return out, nil
}

// ListAuditsByLaboratory implements Store.
func (s *MemoryStore) ListAuditsByLaboratory(ctx context.Context, laboratoryID string) ([]*audit.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.Audit
	for _, a := range s.audits {
		if a.LaboratoryID == laboratoryID {
			auditCopy := *a
			out = append(out, &auditCopy)
		}
	}
	sortAuditsByOpenedOnDesc(out)
	return out, nil
}

// PutResponse implements Store.
func (s *MemoryStore) PutResponse(ctx context.Context, r *audit.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byQuestion, ok := s.responses[r.AuditID]
	if !ok {
		byQuestion = make(map[string]*audit.Response)
		s.responses[r.AuditID] = byQuestion
	}
	respCopy := *r
	respCopy.EvidenceRefs = append([]string(nil), r.EvidenceRefs...)
	byQuestion[r.QuestionID] = &respCopy
	return nil
}

// GetResponse implements Store.
func (s *MemoryStore) GetResponse(ctx context.Context, auditID, questionID string) (*audit.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.responses[auditID][questionID]
	if !ok {
		return nil, audit.NewNotFoundError("response", auditID+"/"+questionID)
	}
	respCopy := *r
	respCopy.EvidenceRefs = append([]string(nil), r.EvidenceRefs...)
	return &respCopy, nil
}

// ListResponses implements Store.
func (s *MemoryStore) ListResponses(ctx context.Context, auditID string) ([]*audit.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.Response
	for _, r := range s.responses[auditID] {
		respCopy := *r
		respCopy.EvidenceRefs = append([]string(nil), r.EvidenceRefs...)
		out = append(out, &respCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

// PutSubResponse implements Store.
func (s *MemoryStore) PutSubResponse(ctx context.Context, r *audit.SubResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySub, ok := s.subResponses[r.AuditID]
	if !ok {
		bySub = make(map[string]*audit.SubResponse)
		s.subResponses[r.AuditID] = bySub
	}
	respCopy := *r
	bySub[r.SubQuestionID] = &respCopy
	return nil
}

// GetSubResponse implements Store.
func (s *MemoryStore) GetSubResponse(ctx context.Context, auditID, subQuestionID string) (*audit.SubResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.subResponses[auditID][subQuestionID]
	if !ok {
		return nil, audit.NewNotFoundError("sub_response", auditID+"/"+subQuestionID)
	}
	respCopy := *r
	return &respCopy, nil
}

// ListSubResponses implements Store.
func (s *MemoryStore) ListSubResponses(ctx context.Context, auditID string) ([]*audit.SubResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.SubResponse
	for _, r := range s.subResponses[auditID] {
		respCopy := *r
		out = append(out, &respCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubQuestionID < out[j].SubQuestionID })
	return out, nil
}

// AddTeamMember implements Store.
func (s *MemoryStore) AddTeamMember(ctx context.Context, m *audit.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byUser, ok := s.team[m.AuditID]
	if !ok {
		byUser = make(map[string]*audit.TeamMember)
		s.team[m.AuditID] = byUser
	}
	memberCopy := *m
	byUser[m.UserID] = &memberCopy
	return nil
}

// RemoveTeamMember implements Store.
func (s *MemoryStore) RemoveTeamMember(ctx context.Context, auditID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.team[auditID][userID]; !ok {
		return audit.NewNotFoundError("team_member", auditID+"/"+userID)
	}
	delete(s.team[auditID], userID)
	return nil
}

// ListTeamMembers implements Store.
func (s *MemoryStore) ListTeamMembers(ctx context.Context, auditID string) ([]*audit.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.TeamMember
	for _, m := range s.team[auditID] {
		memberCopy := *m
		out = append(out, &memberCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// CreateFinding implements Store.
func (s *MemoryStore) CreateFinding(ctx context.Context, f *audit.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	findingCopy := *f
	s.findings[f.AuditID] = append(s.findings[f.AuditID], &findingCopy)
	return nil
}

// ListFindings implements Store.
func (s *MemoryStore) ListFindings(ctx context.Context, auditID string) ([]*audit.Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*audit.Finding, 0, len(s.findings[auditID]))
	for _, f := range s.findings[auditID] {
		findingCopy := *f
		out = append(out, &findingCopy)
	}
	return out, nil
}

// Close implements Store. It is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

func sortAuditsByOpenedOnDesc(audits []*audit.Audit) {
	sort.Slice(audits, func(i, j int) bool {
		if audits[i].OpenedOn.Equal(audits[j].OpenedOn) {
			return audits[i].ID < audits[j].ID
		}
		return audits[i].OpenedOn.After(audits[j].OpenedOn)
	})
}
