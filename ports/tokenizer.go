package ports

import "github.com/guildpost/guildpost/core"

// Tokenizer converts sessions to and from signed wire tokens. Parsing an
// expired token fails with core.ErrTokenExpired; any other malformed or
// unverifiable token fails with core.ErrInvalidToken in the error chain.
type Tokenizer interface {
	SessionToAccessToken(session *core.Session) (string, error)
	AccessTokenToSession(token string) (*core.Session, error)
	SessionToRefreshToken(session *core.Session) (string, error)
	RefreshTokenToSession(token string) (*core.Session, error)
}
