package store

import (
	"context"
	"sort"
	"sync"

	"github.com/guildpost/guildpost/core"
)

// MemoryBountyStore is an in-memory bounty repository for tests and
// development. Production deployments plug a database-backed implementation
// into the same port.
type MemoryBountyStore struct {
	mu       sync.RWMutex
	bounties map[string]*core.Bounty
}

// NewMemoryBountyStore creates an empty bounty store.
func NewMemoryBountyStore() *MemoryBountyStore {
	return &MemoryBountyStore{bounties: make(map[string]*core.Bounty)}
}

// List returns all bounties, newest first.
func (s *MemoryBountyStore) List(ctx context.Context) ([]core.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Bounty, 0, len(s.bounties))
	for _, b := range s.bounties {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FindByID returns the bounty or (nil, nil).
func (s *MemoryBountyStore) FindByID(ctx context.Context, id string) (*core.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bounty, exists := s.bounties[id]
	if !exists {
		return nil, nil
	}
	b := *bounty
	return &b, nil
}

// Create persists a new bounty.
func (s *MemoryBountyStore) Create(ctx context.Context, bounty *core.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := *bounty
	s.bounties[b.ID] = &b
	return nil
}

// Update overwrites a bounty record.
func (s *MemoryBountyStore) Update(ctx context.Context, bounty *core.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := *bounty
	s.bounties[b.ID] = &b
	return nil
}
