package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/billing"
	"github.com/mrossig/vidriera/internal/config"
	"github.com/mrossig/vidriera/internal/database"
	"github.com/mrossig/vidriera/internal/handlers"
	middlewareCustom "github.com/mrossig/vidriera/internal/middleware"
	"github.com/mrossig/vidriera/internal/oauth"
	"github.com/mrossig/vidriera/internal/repositories"
	"github.com/mrossig/vidriera/internal/routes"
	"github.com/mrossig/vidriera/internal/services"
	pkghttp "github.com/mrossig/vidriera/pkg/http"
	pkglogger "github.com/mrossig/vidriera/pkg/logger"
)

// FakeBillingProvider stands in for MercadoPago. Created subscriptions are
// held in memory so webhook and sync flows can flip their status.
type FakeBillingProvider struct {
	mu            sync.Mutex
	subscriptions map[string]*billing.ProviderSubscription
}

func NewFakeBillingProvider() *FakeBillingProvider {
	return &FakeBillingProvider{subscriptions: map[string]*billing.ProviderSubscription{}}
}

func (f *FakeBillingProvider) CreateSubscription(ctx context.Context, req billing.CreateRequest) (*billing.ProviderSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &billing.ProviderSubscription{
		ID:        "mp-" + uuid.New().String(),
		Status:    "pending",
		InitPoint: "https://www.mercadopago.com/checkout/" + req.ExternalReference,
	}
	f.subscriptions[sub.ID] = sub
	return sub, nil
}

func (f *FakeBillingProvider) GetSubscription(ctx context.Context, providerID string) (*billing.ProviderSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subscriptions[providerID]
	if !ok {
		return nil, fmt.Errorf("provider subscription %s not found", providerID)
	}
	return sub, nil
}

func (f *FakeBillingProvider) CancelSubscription(ctx context.Context, providerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sub, ok := f.subscriptions[providerID]; ok {
		sub.Status = "cancelled"
	}
	return nil
}

// Authorize simulates the payer completing checkout on the provider side.
func (f *FakeBillingProvider) Authorize(providerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sub, ok := f.subscriptions[providerID]; ok {
		sub.Status = "authorized"
	}
}

// fakeMicrosoft satisfies the OAuth surface without hitting the Graph API.
type fakeMicrosoft struct{}

func (fakeMicrosoft) AuthCodeURL(state string) string {
	return "https://login.microsoftonline.com/test/authorize?state=" + state
}

func (fakeMicrosoft) Exchange(ctx context.Context, code string) (*oauth.Profile, error) {
	return &oauth.Profile{ID: "ms-" + code, DisplayName: "OAuth User", Mail: code + "@example.com"}, nil
}

// TestServer wires the full HTTP stack against a real database, with the
// billing provider and identity provider faked.
type TestServer struct {
	Server   *httptest.Server
	DB       *database.DB
	Billing  *FakeBillingProvider
	Config   *config.Config
	TokenMgr *auth.TokenManager
}

// NewTestServer builds the production router over the given database.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		Server: config.ServerConfig{
			Env:            "test",
			BaseURL:        "http://localhost:8080",
			AllowedOrigins: []string{},
			TrustedProxies: []string{},
		},
		Auth: config.AuthConfig{
			AccessSecret:       "test-access-secret-32-characters!!",
			RefreshSecret:      "test-refresh-secret-32-characters!",
			AccessTokenExpiry:  24 * time.Hour,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
	}

	userRepo := repositories.NewUserRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	businessRepo := repositories.NewBusinessRepository(db)
	siteRepo := repositories.NewSiteRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	interactionRepo := repositories.NewInteractionRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)

	provider := NewFakeBillingProvider()

	tokenManager := auth.NewTokenManager(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	auditLogger := pkglogger.NewAuditLogger(logger)
	cookieConfig := auth.CookieConfig{
		AccessMaxAge:  cfg.Auth.AccessTokenExpiry,
		RefreshMaxAge: cfg.Auth.RefreshTokenExpiry,
	}

	authService := services.NewAuthService(userRepo, tokenManager, services.NoopEmailService{}, logger, auditLogger)
	businessService := services.NewBusinessService(businessRepo, logger)
	siteService := services.NewSiteService(siteRepo, businessRepo, logger)
	crmService := services.NewCRMService(contactRepo, interactionRepo, activityRepo, logger)
	billingService := services.NewBillingService(provider, subscriptionRepo, planRepo, userRepo, cfg.Server.BaseURL+"/billing/return", logger)

	env := cfg.Server.Env
	authHandler := handlers.NewAuthHandler(authService, fakeMicrosoft{}, cookieConfig, env)
	businessHandler := handlers.NewBusinessHandler(businessService, env)
	siteHandler := handlers.NewSiteHandler(siteService, env)
	crmHandler := handlers.NewCRMHandler(crmService, env)
	billingHandler := handlers.NewBillingHandler(billingService, userRepo, logger, env)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: env}))
	r.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, businessHandler, siteHandler, crmHandler, billingHandler, tokenManager)

	return &TestServer{
		Server:   httptest.NewServer(r),
		DB:       db,
		Billing:  provider,
		Config:   cfg,
		TokenMgr: tokenManager,
	}
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request against the test server.
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes a request carrying a bearer access token.
func (ts *TestServer) RequestWithAuth(method, path, accessToken string, body interface{}) (*http.Response, error) {
	return ts.Request(method, path, body, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
}

// ParseJSONResponse decodes a response body into target and closes it.
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractTokensFromResponse pulls the token pair out of an auth response.
func ExtractTokensFromResponse(resp *http.Response) (accessToken, refreshToken string, err error) {
	defer resp.Body.Close()

	var authResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", "", fmt.Errorf("failed to parse response: %w", err)
	}

	if access, ok := authResp["accessToken"].(string); ok {
		accessToken = access
	}
	if refresh, ok := authResp["refreshToken"].(string); ok {
		refreshToken = refresh
	}
	return accessToken, refreshToken, nil
}

// GetErrorMessage extracts the error field from an error response.
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["error"].(string); ok {
		return msg, nil
	}
	return "", nil
}
