package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		require.NotNil(t, claims)
		assert.Equal(t, wantUserID, claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	tm := testTokenManager()
	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthMiddleware(tm)(protectedHandler(t, "user-1234")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	tm := testTokenManager()
	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	rec := httptest.NewRecorder()

	AuthMiddleware(tm)(protectedHandler(t, "user-1234")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	tm := testTokenManager()

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	AuthMiddleware(tm)(protectedHandler(t, "")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tm := testTokenManager()

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	AuthMiddleware(tm)(protectedHandler(t, "")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	tm := testTokenManager()
	refreshToken, err := tm.GenerateRefreshToken("user-1234")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer "+refreshToken)
	rec := httptest.NewRecorder()

	AuthMiddleware(tm)(protectedHandler(t, "")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedAuthorizationHeader(t *testing.T) {
	tm := testTokenManager()
	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	// A present but malformed header does not fall through to the cookie.
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Token "+token)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	rec := httptest.NewRecorder()

	AuthMiddleware(tm)(protectedHandler(t, "")).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserFromContext_Unauthenticated(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetUserFromContext(r))
}
