package cart

import (
	"context"
	"sync"
	"time"
)

// Store keeps cart snapshots per owner
type Store interface {
	// Load returns the owner's snapshot, or an empty one when none exists
	Load(ctx context.Context, owner string) (*Snapshot, error)
	// Update applies fn to the owner's snapshot and saves the result atomically.
	// Nothing is saved when fn returns an error.
	Update(ctx context.Context, owner string, fn func(*Snapshot) error) (*Snapshot, error)
	Delete(ctx context.Context, owner string) error
}

// NewSnapshot returns an empty snapshot for owner
func NewSnapshot(owner string, now time.Time) *Snapshot {
	return &Snapshot{
		Owner:     owner,
		Items:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type memoryEntry struct {
	snapshot  Snapshot
	expiresAt time.Time
}

// MemoryStore is an in-process Store, used when no Redis is configured
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a memory store; a zero ttl keeps carts forever
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Load(ctx context.Context, owner string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.get(owner), nil
}

func (m *MemoryStore) Update(ctx context.Context, owner string, fn func(*Snapshot) error) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.get(owner)
	if err := fn(snapshot); err != nil {
		return nil, err
	}

	entry := memoryEntry{snapshot: *cloneSnapshot(snapshot)}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[owner] = entry

	return snapshot, nil
}

func (m *MemoryStore) Delete(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, owner)
	return nil
}

// get must be called with mu held
func (m *MemoryStore) get(owner string) *Snapshot {
	now := m.now()
	entry, ok := m.entries[owner]
	if !ok || (!entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)) {
		delete(m.entries, owner)
		return NewSnapshot(owner, now)
	}
	return cloneSnapshot(&entry.snapshot)
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	clone := *s
	clone.Items = FromItems(s.Items).Items()
	return &clone
}
