package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guildpost/guildpost/core"
	"github.com/guildpost/guildpost/internal/mvx"
	"github.com/guildpost/guildpost/ports"
)

// AuthService owns the wallet login flow: challenge issuance, signature
// verification, user upsert, session minting and revocation.
type AuthService struct {
	tokenizer  ports.Tokenizer
	challenges ports.ChallengeStore
	users      ports.UserStore
	tokens     ports.TokenStore
	profiles   ports.ProfileDirectory
	eventPub   ports.EventPublisher
	log        *zap.Logger

	challengeTTL   time.Duration
	accessTTL      time.Duration
	refreshTTL     time.Duration
	profileTimeout time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	tokenizer ports.Tokenizer,
	challenges ports.ChallengeStore,
	users ports.UserStore,
	tokens ports.TokenStore,
	profiles ports.ProfileDirectory,
	eventPub ports.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		tokenizer:      tokenizer,
		challenges:     challenges,
		users:          users,
		tokens:         tokens,
		profiles:       profiles,
		eventPub:       eventPub,
		log:            log,
		challengeTTL:   5 * time.Minute,
		accessTTL:      15 * time.Minute,
		refreshTTL:     5 * 24 * time.Hour, // 5 days
		profileTimeout: 3 * time.Second,
	}
}

// CreateChallenge issues and persists a fresh single-use login nonce.
func (s *AuthService) CreateChallenge(ctx context.Context) (*core.Challenge, error) {
	now := time.Now()
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}
	return challenge, nil
}

// Login authenticates a wallet by verifying a detached signature over a
// previously issued nonce. The nonce is consumed atomically before the
// signature is checked, so it can never authenticate twice. On success the
// user is upserted by address and a session token pair is minted.
func (s *AuthService) Login(ctx context.Context, address, signature, nonce string) (*core.User, string, string, error) {
	challenge, err := s.challenges.Consume(ctx, nonce)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to consume challenge: %w", err)
	}
	if challenge == nil {
		return nil, "", "", core.ErrInvalidNonce
	}

	if !mvx.VerifyLoginSignature(signature, address, challenge.ID) {
		return nil, "", "", core.ErrInvalidSignature
	}

	user, err := s.users.FindOrCreate(ctx, address)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to upsert user: %w", err)
	}

	if user.Handle == "" {
		s.enrichProfile(ctx, user)
	}

	accessToken, refreshToken, err := s.mintTokens(user)
	if err != nil {
		return nil, "", "", err
	}

	if err := s.eventPub.PublishLogin(ctx, address); err != nil {
		// The session is already minted; a dropped event must not fail the
		// login.
		s.log.Warn("failed to publish login event", zap.String("address", address), zap.Error(err))
	}

	return user, accessToken, refreshToken, nil
}

// enrichProfile fills an empty handle from the external directory. The call
// is bounded by its own deadline and every failure is swallowed: enrichment
// never blocks or fails a login.
func (s *AuthService) enrichProfile(ctx context.Context, user *core.User) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()

	profile, err := s.profiles.Lookup(lookupCtx, user.Address)
	if err != nil {
		s.log.Warn("profile lookup failed", zap.String("address", user.Address), zap.Error(err))
		return
	}
	if profile == nil || profile.Handle == "" {
		return
	}

	user.Handle = profile.Handle
	if user.AvatarURL == "" {
		user.AvatarURL = profile.AvatarURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.log.Warn("failed to store discovered handle", zap.String("address", user.Address), zap.Error(err))
	}
}

// Refresh rotates the refresh token and issues new access and refresh tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenStr string) (string, string, error) {
	// Expiry is validated during parsing, surfacing as core.ErrTokenExpired.
	session, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}

	invalidated, err := s.tokens.IsTokenInvalidated(ctx, session.RefreshID)
	if err != nil {
		return "", "", fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if invalidated {
		return "", "", core.ErrTokenInvalidated
	}

	// Invalidate the old refresh token for the remainder of its lifetime.
	remainingTime := time.Until(session.RefreshExpiry)
	if err := s.tokens.InvalidateToken(ctx, session.RefreshID, remainingTime); err != nil {
		return "", "", fmt.Errorf("failed to invalidate old token: %w", err)
	}

	user, err := s.users.FindByAddress(ctx, session.User.Address)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch user: %w", err)
	}
	if user == nil {
		return "", "", core.ErrInvalidToken
	}

	return s.mintTokens(user)
}

// Logout invalidates a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshTokenStr string) error {
	session, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", err)
	}

	// A near-expiry token still gets a minimum invalidation TTL to cover
	// clock skew between instances.
	remainingTime := time.Until(session.RefreshExpiry)
	if remainingTime < time.Hour {
		remainingTime = time.Hour
	}

	if err := s.tokens.InvalidateToken(ctx, session.RefreshID, remainingTime); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	if err := s.eventPub.PublishLogout(ctx, session.User.Address, session.RefreshID); err != nil {
		// The token is already invalidated in the store, which is the part
		// that matters.
		s.log.Warn("failed to publish logout event", zap.String("address", session.User.Address), zap.Error(err))
	}

	return nil
}

// ValidateAccessToken verifies a bearer token and re-resolves the embedded
// user against the store. Callers treat any error as "no identity".
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	if session.RefreshID != "" {
		invalidated, err := s.tokens.IsTokenInvalidated(ctx, session.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token invalidation: %w", err)
		}
		if invalidated {
			return nil, core.ErrTokenInvalidated
		}
	}

	// The token carries a snapshot; the live record wins. A token whose user
	// no longer resolves yields no identity.
	user, err := s.users.FindByAddress(ctx, session.User.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if user == nil {
		return nil, core.ErrInvalidToken
	}
	session.User = *user

	return session, nil
}

func (s *AuthService) mintTokens(user *core.User) (string, string, error) {
	now := time.Now()
	session := &core.Session{
		ID:            uuid.New().String(),
		User:          *user,
		IssuedAt:      now,
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
		RefreshID:     uuid.New().String(),
	}

	accessToken, err := s.tokenizer.SessionToAccessToken(session)
	if err != nil {
		return "", "", fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.tokenizer.SessionToRefreshToken(session)
	if err != nil {
		return "", "", fmt.Errorf("failed to create refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
