package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims embed a snapshot of the user at issuance time alongside the
// standard claims. The subject is the wallet address.
type AccessClaims struct {
	jwt.RegisteredClaims
	Handle    string `json:"handle,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
	Verified  bool   `json:"verified,omitempty"`
	RefreshID string `json:"rid"` // ID of the paired refresh token
}

// RefreshClaims are just the standard claims for refresh tokens.
type RefreshClaims struct {
	jwt.RegisteredClaims
}
