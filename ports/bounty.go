package ports

import (
	"context"

	"github.com/guildpost/guildpost/core"
)

// BountyStore persists marketplace bounties. The auth core consumes it only
// through this interface; the persistence technology lives behind it.
type BountyStore interface {
	// List returns all bounties, newest first.
	List(ctx context.Context) ([]core.Bounty, error)

	// FindByID returns (nil, nil) when no bounty exists for the id.
	FindByID(ctx context.Context, id string) (*core.Bounty, error)

	Create(ctx context.Context, bounty *core.Bounty) error
	Update(ctx context.Context, bounty *core.Bounty) error
}
