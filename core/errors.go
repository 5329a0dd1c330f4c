package core

import (
	"errors"
	"fmt"
)

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrInvalidAddress   = errors.New("invalid address")
)

// FieldError describes one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries the complete set of schema violations for a
// request payload. It is never partial: all violations are collected before
// the error is raised.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", len(e.Details))
}

// AuthenticationError means the action required an identity and none was
// present or valid. Translates to 401.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// AuthorizationError means the caller is authenticated but not permitted to
// act on the resource. Translates to 403.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NotFoundError means a referenced entity does not exist. Translates to 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// DomainError is a business-rule violation carrying its own HTTP status,
// e.g. 409 for a conflicting state transition or 422 for a rejected login.
type DomainError struct {
	Status  int
	Message string
}

func (e *DomainError) Error() string { return e.Message }
