package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/background"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := database.RunMigrations(migrateCtx, &cfg.Database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	businessRepo := repositories.NewBusinessRepository(db)
	siteRepo := repositories.NewSiteRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	interactionRepo := repositories.NewInteractionRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)

	// External providers
	microsoftClient := oauth.NewMicrosoftClient(&cfg.OAuth, cfg.Server.BaseURL+"/auth/microsoft/callback")

	mercadoPago, err := billing.NewMercadoPagoProvider(&cfg.Billing)
	if err != nil {
		logger.Error("failed to initialize payment provider", slog.Any("error", err))
		os.Exit(1)
	}

	var emailService services.EmailService = services.NoopEmailService{}
	if cfg.Email.Enabled {
		emailService, err = services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Auth plumbing
	tokenManager := auth.NewTokenManager(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	auditLogger := pkglogger.NewAuditLogger(logger)
	cookieConfig := auth.CookieConfig{
		Domain:        cfg.Auth.CookieDomain,
		Secure:        cfg.Server.Env == "production",
		AccessMaxAge:  cfg.Auth.AccessTokenExpiry,
		RefreshMaxAge: cfg.Auth.RefreshTokenExpiry,
	}

	// Services
	authService := services.NewAuthService(userRepo, tokenManager, emailService, logger, auditLogger)
	businessService := services.NewBusinessService(businessRepo, logger)
	siteService := services.NewSiteService(siteRepo, businessRepo, logger)
	crmService := services.NewCRMService(contactRepo, interactionRepo, activityRepo, logger)
	billingService := services.NewBillingService(mercadoPago, subscriptionRepo, planRepo, userRepo, cfg.Server.BaseURL+"/billing/return", logger)

	// Handlers
	env := cfg.Server.Env
	authHandler := handlers.NewAuthHandler(authService, microsoftClient, cookieConfig, env)
	businessHandler := handlers.NewBusinessHandler(businessService, env)
	siteHandler := handlers.NewSiteHandler(siteService, env)
	crmHandler := handlers.NewCRMHandler(crmService, env)
	billingHandler := handlers.NewBillingHandler(billingService, userRepo, logger, env)

	syncManager := background.NewSubscriptionSyncManager(billingService, logger, cfg.Billing.SyncInterval)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, businessHandler, siteHandler, crmHandler, billingHandler, tokenManager)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	syncCtx, syncCancel := context.WithCancel(context.Background())
	defer syncCancel()
	go syncManager.Start(syncCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	syncCancel()
	syncManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
