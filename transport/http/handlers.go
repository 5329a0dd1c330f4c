package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/guildpost/guildpost/core"
	"github.com/guildpost/guildpost/service"
)

// AuthHandlers declares the actions of the wallet login flow.
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Init issues a fresh login nonce.
func (h *AuthHandlers) Init() Resource {
	return Resource{
		http.MethodPost: Action{
			Visibility: Public,
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				challenge, err := h.authService.CreateChallenge(ctx)
				if err != nil {
					return nil, err
				}
				return &Response{Body: map[string]string{"nonce": challenge.ID}}, nil
			},
		},
	}
}

type loginRequest struct {
	Address   string `json:"address" form:"address" validate:"required,erd_addr"`
	Signature string `json:"signature" form:"signature" validate:"required,hexadecimal"`
	Nonce     string `json:"nonce" form:"nonce" validate:"required"`
}

// Login verifies a signed nonce and mints a session token pair.
func (h *AuthHandlers) Login() Resource {
	return Resource{
		http.MethodPost: Action{
			Visibility: Public,
			Schema:     func() any { return &loginRequest{} },
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				payload := req.Payload.(*loginRequest)

				user, accessToken, refreshToken, err := h.authService.Login(ctx, payload.Address, payload.Signature, payload.Nonce)
				switch {
				case errors.Is(err, core.ErrInvalidNonce):
					return nil, &core.DomainError{Status: http.StatusUnprocessableEntity, Message: "Invalid nonce"}
				case errors.Is(err, core.ErrInvalidSignature):
					return nil, &core.DomainError{Status: http.StatusUnprocessableEntity, Message: "Invalid signature"}
				case err != nil:
					return nil, err
				}

				return &Response{Body: map[string]any{
					"user":          user,
					"token":         accessToken,
					"refresh_token": refreshToken,
				}}, nil
			},
		},
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token.
func (h *AuthHandlers) Refresh() Resource {
	return Resource{
		http.MethodPost: Action{
			Visibility: Public,
			Schema:     func() any { return &refreshRequest{} },
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				payload := req.Payload.(*refreshRequest)

				accessToken, refreshToken, err := h.authService.Refresh(ctx, payload.RefreshToken)
				switch {
				case errors.Is(err, core.ErrTokenExpired):
					return nil, &core.AuthenticationError{Message: "Refresh token expired"}
				case errors.Is(err, core.ErrTokenInvalidated):
					return nil, &core.AuthenticationError{Message: "Refresh token has been invalidated"}
				case errors.Is(err, core.ErrInvalidToken):
					return nil, &core.DomainError{Status: http.StatusUnprocessableEntity, Message: "Invalid refresh token"}
				case err != nil:
					return nil, err
				}

				return &Response{Body: map[string]string{
					"token":         accessToken,
					"refresh_token": refreshToken,
				}}, nil
			},
		},
	}
}

// Logout invalidates a refresh token.
func (h *AuthHandlers) Logout() Resource {
	return Resource{
		http.MethodPost: Action{
			Visibility: Public,
			Schema:     func() any { return &refreshRequest{} },
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				payload := req.Payload.(*refreshRequest)

				err := h.authService.Logout(ctx, payload.RefreshToken)
				switch {
				case errors.Is(err, core.ErrInvalidToken) || errors.Is(err, core.ErrTokenExpired):
					return nil, &core.DomainError{Status: http.StatusUnprocessableEntity, Message: "Invalid refresh token"}
				case err != nil:
					// A store outage is not the caller's fault; let the
					// translator report it as a server error.
					return nil, err
				}
				return &Response{Body: map[string]string{"message": "Logged out"}}, nil
			},
		},
	}
}

// Me returns the authenticated caller's profile.
func (h *AuthHandlers) Me() Resource {
	return Resource{
		http.MethodGet: Action{
			Visibility: Private,
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				return &Response{Body: map[string]any{"user": req.Identity.User}}, nil
			},
		},
	}
}
