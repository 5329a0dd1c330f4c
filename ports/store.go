package ports

import (
	"context"
	"time"

	"github.com/guildpost/guildpost/core"
)

// ChallengeStore persists single-use login nonces.
type ChallengeStore interface {
	// Create persists a fresh challenge with its TTL.
	Create(ctx context.Context, challenge *core.Challenge) error

	// Consume atomically fetches and invalidates a challenge. It returns
	// (nil, nil) when the challenge does not exist, was already consumed,
	// or has expired. Two concurrent consumers of the same id see at most
	// one non-nil result.
	Consume(ctx context.Context, id string) (*core.Challenge, error)
}

// UserStore persists marketplace accounts keyed by wallet address.
type UserStore interface {
	// FindByAddress returns (nil, nil) when no user exists for the address.
	FindByAddress(ctx context.Context, address string) (*core.User, error)

	// FindOrCreate upserts a user by wallet address. New users start with
	// no handle or avatar.
	FindOrCreate(ctx context.Context, address string) (*core.User, error)

	// Update overwrites the stored user record.
	Update(ctx context.Context, user *core.User) error
}

// TokenStore tracks revoked refresh token ids.
type TokenStore interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
