package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func securityHeadersHandler(env string) http.Handler {
	return SecurityHeaders(SecurityHeadersConfig{Env: env})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)

	securityHeadersHandler("development").ServeHTTP(rec, r)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "same-origin", rec.Header().Get("Cross-Origin-Opener-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Permissions-Policy"))
}

func TestSecurityHeaders_ProductionCSPIsStrict(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)

	securityHeadersHandler("production").ServeHTTP(rec, r)

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "frame-ancestors 'none'")
	assert.NotContains(t, csp, "unsafe-eval")
}

func TestSecurityHeaders_HSTSOnlyOverTLSInProduction(t *testing.T) {
	// Plain HTTP in production: no HSTS.
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	securityHeadersHandler("production").ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	// Behind a TLS-terminating proxy in production: HSTS set.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	securityHeadersHandler("production").ServeHTTP(rec, r)
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")

	// TLS in development: still no HSTS.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	securityHeadersHandler("development").ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}
