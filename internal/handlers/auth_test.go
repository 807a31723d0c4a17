package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	"github.com/mrossig/vidriera/internal/oauth"
	"github.com/mrossig/vidriera/internal/services"
)

type mockAuthService struct {
	RegisterFunc               func(ctx context.Context, name, email, password string) (*services.AuthResponse, error)
	LoginFunc                  func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	ResolveFromAccessTokenFunc func(ctx context.Context, token string) (*models.User, error)
	RefreshAccessTokenFunc     func(ctx context.Context, refreshToken string) (string, error)
	FindOrCreateOAuthUserFunc  func(ctx context.Context, oauthID, name, email string) (*models.User, bool, error)
	IssueTokenPairFunc         func(user *models.User) (string, string, error)
	DeleteUserFunc             func(ctx context.Context, id string) error
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*services.AuthResponse, error) {
	return m.RegisterFunc(ctx, name, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockAuthService) ResolveFromAccessToken(ctx context.Context, token string) (*models.User, error) {
	return m.ResolveFromAccessTokenFunc(ctx, token)
}

func (m *mockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	return m.RefreshAccessTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) FindOrCreateOAuthUser(ctx context.Context, oauthID, name, email string) (*models.User, bool, error) {
	return m.FindOrCreateOAuthUserFunc(ctx, oauthID, name, email)
}

func (m *mockAuthService) IssueTokenPair(user *models.User) (string, string, error) {
	return m.IssueTokenPairFunc(user)
}

func (m *mockAuthService) DeleteUser(ctx context.Context, id string) error {
	return m.DeleteUserFunc(ctx, id)
}

type mockMicrosoftOAuth struct {
	AuthCodeURLFunc func(state string) string
	ExchangeFunc    func(ctx context.Context, code string) (*oauth.Profile, error)
}

func (m *mockMicrosoftOAuth) AuthCodeURL(state string) string {
	return m.AuthCodeURLFunc(state)
}

func (m *mockMicrosoftOAuth) Exchange(ctx context.Context, code string) (*oauth.Profile, error) {
	return m.ExchangeFunc(ctx, code)
}

func testAuthHandler(service AuthServiceInterface, microsoft MicrosoftOAuth) *AuthHandler {
	return NewAuthHandler(service, microsoft, auth.CookieConfig{
		AccessMaxAge:  24 * time.Hour,
		RefreshMaxAge: 7 * 24 * time.Hour,
	}, "test")
}

func authSuccessResponse() *services.AuthResponse {
	email := "ana@example.com"
	return &services.AuthResponse{
		Success:      true,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User: &services.UserResponse{
			ID:     "user-1234",
			Name:   "Ana",
			Email:  &email,
			PlanID: models.DefaultPlanID,
		},
	}
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	service := &mockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string) (*services.AuthResponse, error) {
			assert.Equal(t, "Ana", name)
			assert.Equal(t, "ana@example.com", email)
			return authSuccessResponse(), nil
		},
	}
	h := testAuthHandler(service, nil)

	body := `{"name":"Ana","email":"ana@example.com","password":"secret1"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, r)

	assert.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	access := cookieByName(cookies, auth.AccessTokenCookie)
	refresh := cookieByName(cookies, auth.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, "access-token", access.Value)
	assert.Equal(t, "refresh-token", refresh.Value)
	assert.True(t, access.HttpOnly)

	var resp services.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "user-1234", resp.User.ID)
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	h := testAuthHandler(&mockAuthService{}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing fields", `{}`},
		{"short password", `{"name":"Ana","email":"ana@example.com","password":"123"}`},
		{"bad email", `{"name":"Ana","email":"not-an-email","password":"secret1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.Register(rec, r)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	service := &mockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string) (*services.AuthResponse, error) {
			return nil, models.NewConflict("email already registered")
		},
	}
	h := testAuthHandler(service, nil)

	body := `{"name":"Ana","email":"ana@example.com","password":"secret1"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"email already registered"}`, rec.Body.String())
}

func TestAuthHandler_Login(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return authSuccessResponse(), nil
		},
	}
	h := testAuthHandler(service, nil)

	body := `{"email":"ana@example.com","password":"secret1"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieByName(rec.Result().Cookies(), auth.AccessTokenCookie))
	assert.NotNil(t, cookieByName(rec.Result().Cookies(), auth.RefreshTokenCookie))
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return nil, models.NewUnauthorized("invalid email or password")
		},
	}
	h := testAuthHandler(service, nil)

	body := `{"email":"ana@example.com","password":"wrong"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "no cookies on failed login")
}

func TestAuthHandler_Me(t *testing.T) {
	email := "ana@example.com"
	service := &mockAuthService{
		ResolveFromAccessTokenFunc: func(ctx context.Context, token string) (*models.User, error) {
			assert.Equal(t, "the-token", token)
			return &models.User{ID: "user-1234", Name: "Ana", Email: &email, Provider: models.ProviderEmail, PlanID: "free"}, nil
		},
	}
	h := testAuthHandler(service, nil)

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "the-token"})
	rec := httptest.NewRecorder()

	h.Me(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user-1234", resp.User.ID)
}

func TestAuthHandler_Me_UserGone(t *testing.T) {
	service := &mockAuthService{
		ResolveFromAccessTokenFunc: func(ctx context.Context, token string) (*models.User, error) {
			return nil, nil
		},
	}
	h := testAuthHandler(service, nil)

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer the-token")
	rec := httptest.NewRecorder()

	h.Me(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":null`)
}

func TestAuthHandler_Me_NoCredentials(t *testing.T) {
	h := testAuthHandler(&mockAuthService{}, nil)

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	h.Me(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	service := &mockAuthService{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (string, error) {
			assert.Equal(t, "the-refresh-token", refreshToken)
			return "new-access-token", nil
		},
	}
	h := testAuthHandler(service, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	r.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "the-refresh-token"})
	rec := httptest.NewRecorder()

	h.Refresh(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec.Result().Cookies(), auth.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "new-access-token", access.Value)

	// The refresh token cookie is not rotated.
	assert.Nil(t, cookieByName(rec.Result().Cookies(), auth.RefreshTokenCookie))
}

func TestAuthHandler_Refresh_MissingCookie(t *testing.T) {
	h := testAuthHandler(&mockAuthService{}, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	rec := httptest.NewRecorder()

	h.Refresh(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	h := testAuthHandler(&mockAuthService{}, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	h.Logout(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec.Result().Cookies(), auth.AccessTokenCookie)
	refresh := cookieByName(rec.Result().Cookies(), auth.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Empty(t, access.Value)
	assert.Empty(t, refresh.Value)
	assert.Negative(t, access.MaxAge)
}

func TestAuthHandler_MicrosoftLogin(t *testing.T) {
	microsoft := &mockMicrosoftOAuth{
		AuthCodeURLFunc: func(state string) string {
			assert.NotEmpty(t, state)
			return "https://login.microsoftonline.com/authorize?state=" + state
		},
	}
	h := testAuthHandler(&mockAuthService{}, microsoft)

	r := httptest.NewRequest(http.MethodGet, "/auth/microsoft", nil)
	rec := httptest.NewRecorder()

	h.MicrosoftLogin(rec, r)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "login.microsoftonline.com")

	state := cookieByName(rec.Result().Cookies(), oauthStateCookie)
	require.NotNil(t, state)
	assert.NotEmpty(t, state.Value)
	assert.True(t, state.HttpOnly)
}

func TestAuthHandler_MicrosoftCallback(t *testing.T) {
	email := "marco@example.com"
	user := &models.User{ID: "ms-subject-1", Name: "Marco", Email: &email, Provider: models.ProviderMicrosoft, PlanID: "free"}

	microsoft := &mockMicrosoftOAuth{
		ExchangeFunc: func(ctx context.Context, code string) (*oauth.Profile, error) {
			assert.Equal(t, "the-code", code)
			return &oauth.Profile{ID: "ms-subject-1", DisplayName: "Marco", Mail: email}, nil
		},
	}
	service := &mockAuthService{
		FindOrCreateOAuthUserFunc: func(ctx context.Context, oauthID, name, em string) (*models.User, bool, error) {
			assert.Equal(t, "ms-subject-1", oauthID)
			return user, true, nil
		},
		IssueTokenPairFunc: func(u *models.User) (string, string, error) {
			return "access-token", "refresh-token", nil
		},
	}
	h := testAuthHandler(service, microsoft)

	r := httptest.NewRequest(http.MethodGet, "/auth/microsoft/callback?code=the-code&state=st4te", nil)
	r.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st4te"})
	rec := httptest.NewRecorder()

	h.MicrosoftCallback(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isNewUser":true`)
	assert.NotNil(t, cookieByName(rec.Result().Cookies(), auth.AccessTokenCookie))
	assert.NotNil(t, cookieByName(rec.Result().Cookies(), auth.RefreshTokenCookie))
}

func TestAuthHandler_MicrosoftCallback_StateMismatch(t *testing.T) {
	h := testAuthHandler(&mockAuthService{}, &mockMicrosoftOAuth{})

	r := httptest.NewRequest(http.MethodGet, "/auth/microsoft/callback?code=the-code&state=evil", nil)
	r.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st4te"})
	rec := httptest.NewRecorder()

	h.MicrosoftCallback(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_MicrosoftCallback_EmailCollision(t *testing.T) {
	microsoft := &mockMicrosoftOAuth{
		ExchangeFunc: func(ctx context.Context, code string) (*oauth.Profile, error) {
			return &oauth.Profile{ID: "ms-subject-1", DisplayName: "Ana", Mail: "ana@example.com"}, nil
		},
	}
	service := &mockAuthService{
		FindOrCreateOAuthUserFunc: func(ctx context.Context, oauthID, name, email string) (*models.User, bool, error) {
			return nil, false, models.NewConflict("an account with this email already exists; sign in with your password")
		},
	}
	h := testAuthHandler(service, microsoft)

	r := httptest.NewRequest(http.MethodGet, "/auth/microsoft/callback?code=the-code&state=st4te", nil)
	r.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st4te"})
	rec := httptest.NewRecorder()

	h.MicrosoftCallback(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func claimsContext(r *http.Request, userID string) *http.Request {
	tm := auth.NewTokenManager("access-secret-for-tests-0123456789", "refresh-secret-for-tests-0123456789", time.Hour, time.Hour)
	token, _ := tm.GenerateAccessToken(&models.User{ID: userID, Name: "Ana", Provider: models.ProviderEmail})

	var out *http.Request
	handler := auth.AuthMiddleware(tm)(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		out = req
	}))
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	return out
}

func TestAuthHandler_DeleteUser_OwnAccount(t *testing.T) {
	deleted := false
	service := &mockAuthService{
		DeleteUserFunc: func(ctx context.Context, id string) error {
			assert.Equal(t, "user-1234", id)
			deleted = true
			return nil
		},
	}
	h := testAuthHandler(service, nil)

	r := httptest.NewRequest(http.MethodDelete, "/users/user-1234", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "user-1234")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	r = claimsContext(r, "user-1234")

	rec := httptest.NewRecorder()
	h.DeleteUser(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deleted)
}

func TestAuthHandler_DeleteUser_OtherAccountReadsAsAbsent(t *testing.T) {
	h := testAuthHandler(&mockAuthService{}, nil)

	r := httptest.NewRequest(http.MethodDelete, "/users/other-user", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "other-user")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	r = claimsContext(r, "user-1234")

	rec := httptest.NewRecorder()
	h.DeleteUser(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
