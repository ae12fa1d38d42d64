package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	claims interface{}
	err    error
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeUserProvider struct {
	userID int32
	err    error
	gotUID string
	gotArg [2]string
}

func (f *fakeUserProvider) EnsureUser(ctx context.Context, uid, email, name string) (int32, error) {
	f.gotUID = uid
	f.gotArg = [2]string{email, name}
	return f.userID, f.err
}

func validClaims(uid string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: uid},
		CustomClaims:     &CustomClaims{Email: "fop@example.com", Name: "Олена Коваль"},
	}
}

func runAuth(t *testing.T, m *AuthMiddleware, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := m.Authenticate()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, c, called
}

func TestAuthenticate_Success(t *testing.T) {
	users := &fakeUserProvider{userID: 5}
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: validClaims("uid-1")}, users)

	rec, c, called := runAuth(t, m, "Bearer good-token")

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(5), GetUserID(c))
	assert.Equal(t, "uid-1", GetFirebaseUID(c))
	assert.Equal(t, "uid-1", users.gotUID)
	assert.Equal(t, [2]string{"fop@example.com", "Олена Коваль"}, users.gotArg)
	require.NotNil(t, GetCustomClaims(c))
	assert.Equal(t, "fop@example.com", GetCustomClaims(c).Email)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: validClaims("uid-1")}, &fakeUserProvider{userID: 1})

	rec, _, called := runAuth(t, m, "")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuthenticate_BadScheme(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: validClaims("uid-1")}, &fakeUserProvider{userID: 1})

	rec, _, called := runAuth(t, m, "Basic abc")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{err: errors.New("expired")}, &fakeUserProvider{userID: 1})

	rec, _, called := runAuth(t, m, "Bearer expired")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuthenticate_UserLookupFails(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: validClaims("uid-1")}, &fakeUserProvider{err: errors.New("db down")})

	rec, _, called := runAuth(t, m, "Bearer good-token")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyToken_RejectsEmptySubject(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: validClaims("")}, nil)

	_, err := m.VerifyToken(context.Background(), "token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveUser(t *testing.T) {
	m := NewAuthMiddlewareWithValidator(&fakeValidator{claims: validClaims("uid-9")}, &fakeUserProvider{userID: 9})

	userID, err := m.ResolveUser(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, int32(9), userID)
}

func TestNewAuthMiddleware(t *testing.T) {
	m, err := NewAuthMiddleware("fopilot-test", &fakeUserProvider{})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = m.VerifyToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserID_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, int32(0), GetUserID(c))
	assert.Equal(t, "", GetFirebaseUID(c))
	assert.Nil(t, GetClaims(c))
	assert.Nil(t, GetCustomClaims(c))
}
