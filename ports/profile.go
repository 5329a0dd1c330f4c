package ports

import "context"

// Profile is the subset of an external account profile used to enrich a
// freshly created user.
type Profile struct {
	Handle    string
	AvatarURL string
}

// ProfileDirectory looks up public profile data for a wallet address from an
// external service. Lookups are best effort: callers swallow failures and
// must bound the call with a context deadline.
type ProfileDirectory interface {
	Lookup(ctx context.Context, address string) (*Profile, error)
}
