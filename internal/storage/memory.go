package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps emails in process memory. It is the fallback used when no
// hosted store is configured: inserts are acknowledged but nothing survives a
// restart. Duplicate detection scans the local list.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[Table][]Record
	now    func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[Table][]Record, len(Tables)),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Name implements EmailStore.
func (m *MemoryStore) Name() string { return "memory" }

// Close implements EmailStore.
func (m *MemoryStore) Close() error { return nil }

// Insert implements EmailStore.
func (m *MemoryStore) Insert(ctx context.Context, table Table, email string) error {
	if err := checkInsert(ctx, table, email); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.tables[table] {
		if rec.Email == email {
			return conflictError(table)
		}
	}
	m.tables[table] = append(m.tables[table], Record{Email: email, CreatedAt: m.now()})
	return nil
}

// Records returns a copy of the emails stored in table.
func (m *MemoryStore) Records(table Table) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.tables[table]...)
}
