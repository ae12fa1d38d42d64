package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	// Firebase publishes its signing keys as a JWKS document here
	firebaseJWKSURI = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// ErrInvalidToken is returned when an ID token fails validation
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims contains the profile claims Firebase puts in ID tokens
type CustomClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// FirebaseUIDKey is the context key for the Firebase uid (token subject)
	FirebaseUIDKey contextKey = "firebase_uid"
	// UserIDKey is the context key for the local user ID
	UserIDKey contextKey = "user_id"
)

// Identity is the verified subject of an ID token
type Identity struct {
	UID    string
	Email  string
	Name   string
	Claims *validator.ValidatedClaims
}

// UserProvider maps a verified identity to a local user, creating it on first sight
type UserProvider interface {
	EnsureUser(ctx context.Context, uid, email, name string) (userID int32, err error)
}

// TokenValidator is satisfied by *validator.Validator
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (interface{}, error)
}

// AuthMiddleware validates Firebase ID tokens
type AuthMiddleware struct {
	validator    TokenValidator
	userProvider UserProvider
}

// NewAuthMiddleware creates a new AuthMiddleware for a Firebase project
func NewAuthMiddleware(projectID string, userProvider UserProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse(firebaseIssuerPrefix + projectID)
	if err != nil {
		return nil, err
	}
	jwksURL, err := url.Parse(firebaseJWKSURI)
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute, jwks.WithCustomJWKSURI(jwksURL))

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{projectID},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return NewAuthMiddlewareWithValidator(jwtValidator, userProvider), nil
}

// NewAuthMiddlewareWithValidator creates an AuthMiddleware around an existing validator
func NewAuthMiddlewareWithValidator(v TokenValidator, userProvider UserProvider) *AuthMiddleware {
	return &AuthMiddleware{
		validator:    v,
		userProvider: userProvider,
	}
}

// VerifyToken validates a raw ID token and returns its identity
func (m *AuthMiddleware) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok || validatedClaims.RegisteredClaims.Subject == "" {
		return nil, ErrInvalidToken
	}

	identity := &Identity{
		UID:    validatedClaims.RegisteredClaims.Subject,
		Claims: validatedClaims,
	}
	if custom, ok := validatedClaims.CustomClaims.(*CustomClaims); ok {
		identity.Email = custom.Email
		identity.Name = custom.Name
	}
	return identity, nil
}

// ResolveUser validates a token and returns the local user it belongs to
func (m *AuthMiddleware) ResolveUser(ctx context.Context, token string) (int32, error) {
	identity, err := m.VerifyToken(ctx, token)
	if err != nil {
		return 0, err
	}
	return m.userProvider.EnsureUser(ctx, identity.UID, identity.Email, identity.Name)
}

// Authenticate returns an Echo middleware that validates ID tokens
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			identity, err := m.VerifyToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, identity.Claims)
			ctx = context.WithValue(ctx, FirebaseUIDKey, identity.UID)

			if m.userProvider != nil {
				userID, err := m.userProvider.EnsureUser(ctx, identity.UID, identity.Email, identity.Name)
				if err != nil {
					log.Error().Err(err).Str("firebase_uid", identity.UID).Msg("User lookup failed")
					return unauthorizedError(c, "user not found")
				}
				ctx = context.WithValue(ctx, UserIDKey, userID)
			}

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetFirebaseUID extracts the Firebase uid from the context
func GetFirebaseUID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(FirebaseUIDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}

// GetUserID extracts the local user ID from the context
func GetUserID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(UserIDKey).(int32); ok {
		return id
	}
	return 0
}
