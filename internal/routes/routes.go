package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/handlers"
	"github.com/mrossig/vidriera/internal/middleware"
)

// RegisterRoutes registers all application routes.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	businessHandler *handlers.BusinessHandler,
	siteHandler *handlers.SiteHandler,
	crmHandler *handlers.CRMHandler,
	billingHandler *handlers.BillingHandler,
	tokenManager *auth.TokenManager,
) {
	authLimit := middleware.RateLimitByIP(middleware.DefaultAuthRateLimit())
	webhookLimit := middleware.RateLimitByIP(middleware.DefaultWebhookRateLimit())

	// Public routes
	router.With(authLimit).Post("/auth/register", authHandler.Register)
	router.With(authLimit).Post("/auth/login", authHandler.Login)
	router.With(authLimit).Post("/auth/refresh", authHandler.Refresh)
	router.Post("/auth/logout", authHandler.Logout)
	router.With(authLimit).Get("/auth/microsoft", authHandler.MicrosoftLogin)
	router.With(authLimit).Get("/auth/microsoft/callback", authHandler.MicrosoftCallback)

	// /auth/me validates the token itself: a live token for a deleted account
	// must answer 200 with a null user, which the auth middleware cannot express.
	router.Get("/auth/me", authHandler.Me)

	router.Get("/public/sites/{subdomain}", siteHandler.GetPublic)
	router.Get("/plans", billingHandler.ListPlans)
	router.With(webhookLimit).Post("/webhooks/mercadopago", billingHandler.Webhook)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager))

		r.Delete("/users/{id}", authHandler.DeleteUser)

		r.Post("/businesses", businessHandler.Create)
		r.Get("/businesses", businessHandler.List)
		r.Get("/businesses/{id}", businessHandler.Get)
		r.Put("/businesses/{id}", businessHandler.Update)
		r.Delete("/businesses/{id}", businessHandler.Delete)
		r.Get("/businesses/{id}/site", siteHandler.GetForBusiness)

		r.Post("/sites", siteHandler.Create)
		r.Get("/sites/{id}", siteHandler.Get)
		r.Put("/sites/{id}", siteHandler.Update)
		r.Patch("/sites/{id}/publish", siteHandler.Publish)
		r.Delete("/sites/{id}", siteHandler.Delete)

		r.Post("/contacts", crmHandler.CreateContact)
		r.Get("/contacts", crmHandler.ListContacts)
		r.Get("/contacts/{id}", crmHandler.GetContact)
		r.Put("/contacts/{id}", crmHandler.UpdateContact)
		r.Delete("/contacts/{id}", crmHandler.DeleteContact)
		r.Post("/contacts/{id}/interactions", crmHandler.RecordInteraction)
		r.Get("/contacts/{id}/interactions", crmHandler.ListInteractions)
		r.Delete("/interactions/{id}", crmHandler.DeleteInteraction)

		r.Post("/activities", crmHandler.CreateActivity)
		r.Get("/activities", crmHandler.ListActivities)
		r.Patch("/activities/{id}/done", crmHandler.SetActivityDone)
		r.Delete("/activities/{id}", crmHandler.DeleteActivity)

		r.Post("/billing/subscribe", billingHandler.Subscribe)
		r.Get("/billing/subscription", billingHandler.CurrentSubscription)
		r.Post("/billing/cancel", billingHandler.Cancel)
	})
}
