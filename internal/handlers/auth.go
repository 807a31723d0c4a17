package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	"github.com/mrossig/vidriera/internal/oauth"
	"github.com/mrossig/vidriera/internal/services"
	pkghttp "github.com/mrossig/vidriera/pkg/http"
)

const oauthStateCookie = "oauthState"

// AuthServiceInterface is the auth business logic consumed by the handler.
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	ResolveFromAccessToken(ctx context.Context, token string) (*models.User, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	FindOrCreateOAuthUser(ctx context.Context, oauthID, name, email string) (*models.User, bool, error)
	IssueTokenPair(user *models.User) (accessToken, refreshToken string, err error)
	DeleteUser(ctx context.Context, id string) error
}

// MicrosoftOAuth is the identity-provider surface for the Microsoft flow.
type MicrosoftOAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// AuthHandler exposes the auth service over HTTP and owns the token cookies.
type AuthHandler struct {
	service      AuthServiceInterface
	microsoft    MicrosoftOAuth
	cookieConfig auth.CookieConfig
	env          string
}

func NewAuthHandler(service AuthServiceInterface, microsoft MicrosoftOAuth, cookieConfig auth.CookieConfig, env string) *AuthHandler {
	return &AuthHandler{
		service:      service,
		microsoft:    microsoft,
		cookieConfig: cookieConfig,
		env:          env,
	}
}

// Request DTOs

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MeResponse wraps token resolution: a valid token whose user row is gone
// yields a null user, not an error.
type MeResponse struct {
	Success bool                   `json:"success"`
	User    *services.UserResponse `json:"user"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	authResp, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	h.setAuthCookies(w, authResp.AccessToken, authResp.RefreshToken)
	pkghttp.WriteJSON(w, http.StatusCreated, authResp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	h.setAuthCookies(w, authResp.AccessToken, authResp.RefreshToken)
	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// Me handles GET /auth/me. The token is verified here rather than in
// middleware because a missing user row is a 200 with a null user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := extractBearerOrCookie(r)
	if token == "" {
		pkghttp.WriteUnauthorized(w, "missing credentials")
		return
	}

	user, err := h.service.ResolveFromAccessToken(r.Context(), token)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	resp := MeResponse{Success: true}
	if user != nil {
		resp.User = services.UserToResponse(user)
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh. A new access token is minted; the
// refresh token is not rotated.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := auth.GetRefreshTokenCookie(r)
	if err != nil || refreshToken == "" {
		pkghttp.WriteUnauthorized(w, "missing refresh token")
		return
	}

	accessToken, err := h.service.RefreshAccessToken(r.Context(), refreshToken)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	auth.SetAccessTokenCookie(w, accessToken, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"accessToken": accessToken,
	})
}

// Logout handles POST /auth/logout. Tokens are bearer capabilities with no
// server-side state, so logout is cookie clearing and always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAuthCookies(w, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged out",
	})
}

// MicrosoftLogin handles GET /auth/microsoft: anti-CSRF state cookie plus a
// redirect to the consent page.
func (h *AuthHandler) MicrosoftLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		pkghttp.WriteInternalError(w, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookieConfig.Secure,
		SameSite: http.SameSiteLaxMode, // strict would drop the cookie on the provider redirect
	})

	http.Redirect(w, r, h.microsoft.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// MicrosoftCallback handles GET /auth/microsoft/callback.
func (h *AuthHandler) MicrosoftCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		pkghttp.WriteUnauthorized(w, "oauth state mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		pkghttp.WriteBadRequest(w, "missing authorization code")
		return
	}

	profile, err := h.microsoft.Exchange(r.Context(), code)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "microsoft authentication failed")
		return
	}

	user, isNewUser, err := h.service.FindOrCreateOAuthUser(r.Context(), profile.ID, profile.DisplayName, profile.Email())
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	accessToken, refreshToken, err := h.service.IssueTokenPair(user)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	h.setAuthCookies(w, accessToken, refreshToken)

	message := "welcome back"
	if isNewUser {
		message = "account created"
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      message,
		"isNewUser":    isNewUser,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user":         services.UserToResponse(user),
	})
}

// DeleteUser handles DELETE /users/{id}. Callers can only delete their own
// account; anyone else's reads as absent.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id != claims.UserID {
		pkghttp.WriteNotFound(w, "user not found")
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	auth.ClearAuthCookies(w, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "account deleted",
	})
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	auth.SetAccessTokenCookie(w, accessToken, h.cookieConfig)
	auth.SetRefreshTokenCookie(w, refreshToken, h.cookieConfig)
}

func extractBearerOrCookie(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	if token, err := auth.GetAccessTokenCookie(r); err == nil {
		return token
	}
	return ""
}

func randomState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
