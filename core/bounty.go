package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// BountyStatus is the lifecycle state of a bounty.
type BountyStatus string

const (
	BountyOpen    BountyStatus = "open"
	BountyAwarded BountyStatus = "awarded"
	BountyClosed  BountyStatus = "closed"
)

// Bounty is a task posted on the marketplace with a reward attached.
type Bounty struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Reward      decimal.Decimal `json:"reward"`
	Creator     string          `json:"creator"`
	Status      BountyStatus    `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Close transitions the bounty to closed. Closing an already-closed bounty
// is a conflicting state transition.
func (b *Bounty) Close() error {
	if b.Status == BountyClosed {
		return &DomainError{Status: 409, Message: "bounty is already closed"}
	}
	b.Status = BountyClosed
	return nil
}
