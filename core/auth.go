package core

import "time"

// Challenge is a single-use authentication nonce. A client proves wallet
// ownership by signing the challenge id; the store consumes it on first use.
type Challenge struct {
	ID        string    // Random opaque nonce value the client signs
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // Challenges older than this are rejected
}

// Expired reports whether the challenge is past its TTL.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Session represents an authenticated user session.
type Session struct {
	ID            string    // Unique session identifier
	User          User      // Snapshot of the user at issuance time
	IssuedAt      time.Time // When the session was created
	AccessExpiry  time.Time // When the access capability expires
	RefreshExpiry time.Time // When the refresh capability expires
	RefreshID     string    // Unique identifier for the refresh token
}

// Identity is the resolved caller of a request. A zero Identity is anonymous.
// It is passed explicitly through the dispatch pipeline; there is no ambient
// session state.
type Identity struct {
	User *User
}

// Anonymous reports whether no authenticated user backs this identity.
func (i Identity) Anonymous() bool {
	return i.User == nil
}

// Address returns the wallet address of the caller, or "" when anonymous.
func (i Identity) Address() string {
	if i.User == nil {
		return ""
	}
	return i.User.Address
}
