package store

import (
	"context"
	"sync"
	"time"

	"github.com/guildpost/guildpost/core"
)

// MemoryStore is an in-memory implementation of the challenge, user and
// token stores, used for tests and single-instance development setups.
type MemoryStore struct {
	mu                sync.Mutex
	challenges        map[string]*core.Challenge
	users             map[string]*core.User
	invalidatedTokens map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges:        make(map[string]*core.Challenge),
		users:             make(map[string]*core.User),
		invalidatedTokens: make(map[string]time.Time),
	}
}

// Create persists a challenge.
func (s *MemoryStore) Create(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *challenge
	s.challenges[c.ID] = &c
	return nil
}

// Consume removes and returns a challenge. The delete happens under the
// store lock, so a nonce can be consumed exactly once even under concurrent
// login attempts. The delete runs before the expiry check: unlike redis,
// nothing here expires records on its own, so consumption is also what
// purges stale entries. Expired challenges are treated as absent.
func (s *MemoryStore) Consume(ctx context.Context, id string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.challenges[id]
	if !exists {
		return nil, nil
	}
	delete(s.challenges, id)

	if challenge.Expired(time.Now()) {
		return nil, nil
	}
	return challenge, nil
}

// FindByAddress returns the stored user or (nil, nil).
func (s *MemoryStore) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[address]
	if !exists {
		return nil, nil
	}
	u := *user
	return &u, nil
}

// FindOrCreate upserts a user by wallet address.
func (s *MemoryStore) FindOrCreate(ctx context.Context, address string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, exists := s.users[address]; exists {
		u := *user
		return &u, nil
	}

	user := &core.User{
		Address:   address,
		CreatedAt: time.Now(),
	}
	s.users[address] = user

	u := *user
	return &u, nil
}

// Update overwrites a user record.
func (s *MemoryStore) Update(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.users[u.Address] = &u
	return nil
}

// InvalidateToken marks a token as invalidated until its expiry passes.
func (s *MemoryStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidatedTokens[tokenID] = time.Now().Add(expiry)
	return nil
}

// IsTokenInvalidated checks if a token is invalidated.
func (s *MemoryStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiryTime, exists := s.invalidatedTokens[tokenID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiryTime) {
		delete(s.invalidatedTokens, tokenID)
		return false, nil
	}
	return true, nil
}
