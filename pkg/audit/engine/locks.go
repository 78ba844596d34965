package engine

import "sync"

// lockTable hands out one mutex per audit ID. Entries are created on first
// use and kept for the life of the process; the population is bounded by
// the number of distinct audits touched.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// forAudit returns the mutex serializing operations on the given audit.
func (t *lockTable) forAudit(auditID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[auditID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[auditID] = l
	}
	return l
}
