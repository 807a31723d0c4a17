package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mrossig/vidriera/internal/auth"
	"github.com/mrossig/vidriera/internal/models"
	"github.com/mrossig/vidriera/internal/services"
	pkghttp "github.com/mrossig/vidriera/pkg/http"
)

// BillingServiceInterface is the subscription logic behind the handler.
type BillingServiceInterface interface {
	Subscribe(ctx context.Context, user *models.User, planID string) (*services.SubscribeResponse, error)
	CurrentSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	Cancel(ctx context.Context, userID string) error
	HandleProviderNotification(ctx context.Context, providerID string) error
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

// UserStore loads the full user row for operations that need more than the
// token claims.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type BillingHandler struct {
	service BillingServiceInterface
	users   UserStore
	logger  *slog.Logger
	env     string
}

func NewBillingHandler(service BillingServiceInterface, users UserStore, logger *slog.Logger, env string) *BillingHandler {
	return &BillingHandler{service: service, users: users, logger: logger, env: env}
}

type SubscribeRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// webhookNotification is the shape MercadoPago POSTs. Only the resource id is
// read; everything else comes from a fresh provider fetch.
type webhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Subscribe handles POST /billing/subscribe
func (h *BillingHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		// valid token but the account row is gone
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "unauthorized")
			return
		}
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	resp, err := h.service.Subscribe(r.Context(), user, req.PlanID)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, resp)
}

// CurrentSubscription handles GET /billing/subscription
func (h *BillingHandler) CurrentSubscription(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	sub, err := h.service.CurrentSubscription(r.Context(), claims.UserID)
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"subscription": sub,
	})
}

// Cancel handles POST /billing/cancel
func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Cancel(r.Context(), claims.UserID); err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "subscription cancelled",
	})
}

// ListPlans handles GET /plans. Public: the pricing page reads it.
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		pkghttp.WriteAppError(w, err, h.env)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"plans":   plans,
	})
}

// Webhook handles POST /webhooks/mercadopago. The provider retries on
// non-2xx, so once a notification parses it is acknowledged even when
// reconciliation fails; the background sync covers the gap.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var note webhookNotification
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		pkghttp.WriteBadRequest(w, "invalid notification body")
		return
	}

	providerID := note.Data.ID
	if providerID == "" {
		providerID = r.URL.Query().Get("id")
	}
	if providerID == "" {
		pkghttp.WriteBadRequest(w, "missing resource id")
		return
	}

	if err := h.service.HandleProviderNotification(r.Context(), providerID); err != nil {
		h.logger.Warn("webhook reconciliation failed",
			slog.String("provider_id", providerID),
			slog.Any("error", err))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
