package forms

import (
	"context"
	"errors"
	"sync"

	"github.com/Its-donkey/coming-soon/internal/storage"
)

// countingStore wraps a MemoryStore and records every insert attempt.
type countingStore struct {
	*storage.MemoryStore

	mu    sync.Mutex
	calls map[storage.Table]int
}

func newCountingStore() *countingStore {
	return &countingStore{
		MemoryStore: storage.NewMemoryStore(),
		calls:       make(map[storage.Table]int),
	}
}

func (c *countingStore) Insert(ctx context.Context, table storage.Table, email string) error {
	c.mu.Lock()
	c.calls[table]++
	c.mu.Unlock()
	return c.MemoryStore.Insert(ctx, table, email)
}

func (c *countingStore) Calls(table storage.Table) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[table]
}

// blockingStore holds every insert until release is closed.
type blockingStore struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingStore(err error) *blockingStore {
	return &blockingStore{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		err:     err,
	}
}

func (b *blockingStore) Insert(ctx context.Context, _ storage.Table, _ string) error {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingStore) Name() string { return "blocking" }
func (b *blockingStore) Close() error { return nil }

// failingStore returns err from every insert.
type failingStore struct{ err error }

func (f failingStore) Insert(context.Context, storage.Table, string) error { return f.err }
func (f failingStore) Name() string                                         { return "failing" }
func (f failingStore) Close() error                                         { return nil }

var errUnreachable = errors.New("dial tcp: connection refused")
