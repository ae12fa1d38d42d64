package websocket

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when token validation fails
var ErrInvalidToken = errors.New("invalid token")

// UserResolver validates an ID token and returns the local user it belongs to.
// The REST auth middleware satisfies it.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (int32, error)
}

// TokenValidator authenticates WebSocket handshakes, which carry the token as a query parameter
type TokenValidator struct {
	resolver UserResolver
}

// NewTokenValidator creates a new TokenValidator
func NewTokenValidator(resolver UserResolver) *TokenValidator {
	return &TokenValidator{resolver: resolver}
}

// ValidateToken validates a token and returns the associated user ID
func (v *TokenValidator) ValidateToken(ctx context.Context, token string) (int32, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	userID, err := v.resolver.ResolveUser(ctx, token)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
