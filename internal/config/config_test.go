package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-0123456789abcdef")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenExpiry)
	assert.Equal(t, "common", cfg.OAuth.MicrosoftTenant)
	assert.Equal(t, "ARS", cfg.Billing.Currency)
	assert.Equal(t, 15*time.Minute, cfg.Billing.SyncInterval)
	assert.False(t, cfg.Email.Enabled)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins, "development gets localhost origins")
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-0123456789abcdef")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-0123456789abcdef")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_ACCESS_SECRET")
}

func TestLoad_IdenticalSecretsRejected(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("JWT_ACCESS_SECRET", "the-same-secret-0123456789abcdef")
	t.Setenv("JWT_REFRESH_SECRET", "the-same-secret-0123456789abcdef")

	_, err := Load()
	assert.ErrorContains(t, err, "must differ")
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("JWT_ACCESS_SECRET", "short")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-0123456789abcdef")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateSecrets_ProductionMinimum(t *testing.T) {
	// 16 chars passes development but not production.
	access := "aaaaaaaaaaaaaaaa"
	refresh := "bbbbbbbbbbbbbbbb"

	assert.NoError(t, validateSecrets(access, refresh, "development"))
	assert.Error(t, validateSecrets(access, refresh, "production"))
}

func TestLoad_CustomExpiry(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCESS_TOKEN_EXPIRY", "1h")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "48h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, 48*time.Hour, cfg.Auth.RefreshTokenExpiry)
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Server.TrustedProxies)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		Name:     "vidriera",
		SSLMode:  "require",
	}
	assert.Equal(t, "host=db.internal port=5433 user=app password=pw dbname=vidriera sslmode=require", cfg.DSN())
}
