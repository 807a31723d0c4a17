package middleware

import "net/http"

// SecurityHeadersConfig selects header strictness by environment.
type SecurityHeadersConfig struct {
	Env string
}

// SecurityHeaders stamps browser hardening headers on every response. This is
// a JSON API surface, so the CSP is self-only in production; development stays
// permissive for local frontend tooling.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	production := config.Env == "production"

	csp := "default-src 'self' http: https: ws:; " +
		"script-src 'self' 'unsafe-inline' 'unsafe-eval' http: https:; " +
		"style-src 'self' 'unsafe-inline' http: https:; " +
		"img-src 'self' data: http: https:; " +
		"frame-ancestors 'self'"
	if production {
		csp = "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data: https:; " +
			"connect-src 'self'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Content-Security-Policy", csp)
			w.Header().Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=()")
			w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")

			// HSTS only makes sense once the request actually arrived over TLS.
			if production && (r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil) {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
