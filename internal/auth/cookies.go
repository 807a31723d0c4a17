package auth

import (
	"net/http"
	"time"
)

// Cookie names exposed to the frontend.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieConfig holds cookie attributes shared by both token cookies.
// Secure is tied to the production/non-production distinction at wiring time.
type CookieConfig struct {
	Domain        string
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// SetAccessTokenCookie sets the access token cookie (httpOnly, SameSite strict).
func SetAccessTokenCookie(w http.ResponseWriter, token string, config CookieConfig) {
	setTokenCookie(w, AccessTokenCookie, token, int(config.AccessMaxAge.Seconds()), config)
}

// SetRefreshTokenCookie sets the refresh token cookie (httpOnly, SameSite strict).
func SetRefreshTokenCookie(w http.ResponseWriter, token string, config CookieConfig) {
	setTokenCookie(w, RefreshTokenCookie, token, int(config.RefreshMaxAge.Seconds()), config)
}

// ClearAuthCookies removes both token cookies. Logout is client-side only;
// there is no server-side revocation.
func ClearAuthCookies(w http.ResponseWriter, config CookieConfig) {
	setTokenCookie(w, AccessTokenCookie, "", -1, config)
	setTokenCookie(w, RefreshTokenCookie, "", -1, config)
}

// GetAccessTokenCookie retrieves the access token from cookies.
func GetAccessTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// GetRefreshTokenCookie retrieves the refresh token from cookies.
func GetRefreshTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func setTokenCookie(w http.ResponseWriter, name, value string, maxAge int, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	}
	http.SetCookie(w, cookie)
}
