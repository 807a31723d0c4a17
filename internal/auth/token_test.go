package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrossig/vidriera/internal/models"
)

const (
	testAccessSecret  = "access-secret-for-tests-0123456789"
	testRefreshSecret = "refresh-secret-for-tests-0123456789"
)

func testTokenManager() *TokenManager {
	return NewTokenManager(testAccessSecret, testRefreshSecret, 24*time.Hour, 7*24*time.Hour)
}

func testUser() *models.User {
	email := "ana@example.com"
	return &models.User{
		ID:       "user-1234",
		Name:     "Ana",
		Email:    &email,
		Provider: models.ProviderEmail,
		PlanID:   models.DefaultPlanID,
	}
}

func TestTokenManager_AccessTokenRoundTrip(t *testing.T) {
	tm := testTokenManager()

	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeAccess, claims.Type)
	assert.Equal(t, "user-1234", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, models.ProviderEmail, claims.Provider)
}

func TestTokenManager_RefreshTokenRoundTrip(t *testing.T) {
	tm := testTokenManager()

	token, err := tm.GenerateRefreshToken("user-1234")
	require.NoError(t, err)

	claims, err := tm.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeRefresh, claims.Type)
	assert.Equal(t, "user-1234", claims.UserID)
}

func TestTokenManager_AccessTokenWithoutEmail(t *testing.T) {
	tm := testTokenManager()
	user := testUser()
	user.Email = nil

	token, err := tm.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := tm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Email)
}

func TestTokenManager_ExpiredAccessToken(t *testing.T) {
	tm := NewTokenManager(testAccessSecret, testRefreshSecret, -time.Minute, 7*24*time.Hour)

	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_ExpiredRefreshToken(t *testing.T) {
	tm := NewTokenManager(testAccessSecret, testRefreshSecret, time.Hour, -time.Minute)

	token, err := tm.GenerateRefreshToken("user-1234")
	require.NoError(t, err)

	_, err = tm.ValidateRefreshToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_TamperedToken(t *testing.T) {
	tm := testTokenManager()

	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "abcd"
	_, err = tm.ValidateAccessToken(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_SecretsAreIndependent(t *testing.T) {
	tm := testTokenManager()

	accessToken, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)
	refreshToken, err := tm.GenerateRefreshToken("user-1234")
	require.NoError(t, err)

	// An access token must not verify as a refresh token and vice versa.
	_, err = tm.ValidateRefreshToken(accessToken)
	assert.Error(t, err)
	_, err = tm.ValidateAccessToken(refreshToken)
	assert.Error(t, err)
}

func TestTokenManager_WrongSecretRejects(t *testing.T) {
	tm := testTokenManager()
	other := NewTokenManager("another-access-secret-0123456789", "another-refresh-secret-0123456789", time.Hour, time.Hour)

	token, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	tm := testTokenManager()

	_, err := tm.ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.ValidateRefreshToken("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
