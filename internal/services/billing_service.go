package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrossig/vidriera/internal/billing"
	"github.com/mrossig/vidriera/internal/models"
)

// BillingProvider is the payment-provider surface the service consumes.
type BillingProvider interface {
	CreateSubscription(ctx context.Context, req billing.CreateRequest) (*billing.ProviderSubscription, error)
	GetSubscription(ctx context.Context, providerID string) (*billing.ProviderSubscription, error)
	CancelSubscription(ctx context.Context, providerID string) error
}

// SubscriptionRepository persists local subscription state.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	GetCurrentByUser(ctx context.Context, userID string) (*models.Subscription, error)
	GetByProviderID(ctx context.Context, providerID string) (*models.Subscription, error)
	SetProvider(ctx context.Context, id, providerID, initPoint string) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateStatusAndPlan(ctx context.Context, id, status, userID, planID string) error
	ListPending(ctx context.Context, limit int) ([]*models.Subscription, error)
}

// PlanRepository reads the plan catalog.
type PlanRepository interface {
	GetByID(ctx context.Context, id string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
}

// UserPlanStore is the slice of the user store billing needs.
type UserPlanStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePlan(ctx context.Context, id, planID string) error
}

// SubscribeResponse is returned to the client after opening a subscription.
// InitPoint is empty for free-plan switches.
type SubscribeResponse struct {
	Success      bool                 `json:"success"`
	Subscription *models.Subscription `json:"subscription"`
	InitPoint    string               `json:"init_point,omitempty"`
}

// BillingService drives the subscription lifecycle against MercadoPago.
type BillingService struct {
	provider BillingProvider
	subs     SubscriptionRepository
	plans    PlanRepository
	users    UserPlanStore
	backURL  string
	logger   *slog.Logger
}

func NewBillingService(provider BillingProvider, subs SubscriptionRepository, plans PlanRepository, users UserPlanStore, backURL string, logger *slog.Logger) *BillingService {
	return &BillingService{
		provider: provider,
		subs:     subs,
		plans:    plans,
		users:    users,
		backURL:  backURL,
		logger:   logger,
	}
}

// Subscribe opens a subscription for the given plan. Free plans switch
// immediately with no provider round trip; paid plans create a pending local
// row, a provider preapproval, and hand back the checkout URL.
func (s *BillingService) Subscribe(ctx context.Context, user *models.User, planID string) (*SubscribeResponse, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("plan not found")
		}
		s.logger.Error("failed to load plan", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	if current, err := s.subs.GetCurrentByUser(ctx, user.ID); err == nil && current.PlanID == plan.ID && current.Active() {
		return nil, models.NewConflict("already subscribed to this plan")
	}

	if plan.IsFree() {
		if err := s.users.UpdatePlan(ctx, user.ID, plan.ID); err != nil {
			s.logger.Error("failed to switch user to free plan", slog.Any("error", err))
			return nil, models.NewServerError("internal server error")
		}
		sub, err := s.subs.Create(ctx, &models.Subscription{
			UserID: user.ID,
			PlanID: plan.ID,
			Status: models.SubscriptionAuthorized,
		})
		if err != nil {
			s.logger.Error("failed to record free subscription", slog.Any("error", err))
			return nil, models.NewServerError("internal server error")
		}
		return &SubscribeResponse{Success: true, Subscription: sub}, nil
	}

	if user.Email == nil {
		return nil, models.NewValidationError("an email address is required for paid plans")
	}

	sub, err := s.subs.Create(ctx, &models.Subscription{
		UserID: user.ID,
		PlanID: plan.ID,
		Status: models.SubscriptionPending,
	})
	if err != nil {
		s.logger.Error("failed to create subscription", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}

	providerSub, err := s.provider.CreateSubscription(ctx, billing.CreateRequest{
		Reason:            fmt.Sprintf("Vidriera %s plan", plan.Name),
		ExternalReference: sub.ID,
		PayerEmail:        *user.Email,
		Amount:            plan.MonthlyPrice,
		Currency:          plan.Currency,
		BackURL:           s.backURL,
	})
	if err != nil {
		s.logger.Error("provider subscription create failed", slog.String("subscription_id", sub.ID), slog.Any("error", err))
		if err := s.subs.UpdateStatus(ctx, sub.ID, models.SubscriptionCancelled); err != nil {
			s.logger.Warn("failed to cancel orphaned subscription", slog.String("subscription_id", sub.ID), slog.Any("error", err))
		}
		return nil, models.NewServerError("payment provider unavailable")
	}

	if err := s.subs.SetProvider(ctx, sub.ID, providerSub.ID, providerSub.InitPoint); err != nil {
		s.logger.Error("failed to store provider reference", slog.String("subscription_id", sub.ID), slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	sub.ProviderID = &providerSub.ID
	sub.InitPoint = providerSub.InitPoint

	s.logger.Info("subscription created",
		slog.String("subscription_id", sub.ID),
		slog.String("plan_id", plan.ID))

	return &SubscribeResponse{Success: true, Subscription: sub, InitPoint: providerSub.InitPoint}, nil
}

// CurrentSubscription returns the caller's latest non-cancelled subscription.
func (s *BillingService) CurrentSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.subs.GetCurrentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFound("no active subscription")
		}
		s.logger.Error("failed to load subscription", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return sub, nil
}

// ListPlans returns the plan catalog, cheapest first.
func (s *BillingService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		s.logger.Error("failed to list plans", slog.Any("error", err))
		return nil, models.NewServerError("internal server error")
	}
	return plans, nil
}

// Cancel cancels the caller's subscription with the provider and moves the
// account back to the free plan.
func (s *BillingService) Cancel(ctx context.Context, userID string) error {
	sub, err := s.subs.GetCurrentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFound("no active subscription")
		}
		s.logger.Error("failed to load subscription", slog.Any("error", err))
		return models.NewServerError("internal server error")
	}

	if sub.ProviderID != nil {
		if err := s.provider.CancelSubscription(ctx, *sub.ProviderID); err != nil {
			s.logger.Error("provider cancel failed", slog.String("subscription_id", sub.ID), slog.Any("error", err))
			return models.NewServerError("payment provider unavailable")
		}
	}

	if err := s.subs.UpdateStatusAndPlan(ctx, sub.ID, models.SubscriptionCancelled, userID, models.DefaultPlanID); err != nil {
		s.logger.Error("failed to cancel subscription", slog.Any("error", err))
		return models.NewServerError("internal server error")
	}

	s.logger.Info("subscription cancelled", slog.String("subscription_id", sub.ID))
	return nil
}

// HandleProviderNotification reconciles a single preapproval after a webhook
// ping. The webhook body only carries the provider id; state comes from a
// fresh provider read, never from the notification payload.
func (s *BillingService) HandleProviderNotification(ctx context.Context, providerID string) error {
	sub, err := s.subs.GetByProviderID(ctx, providerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("notification for unknown subscription", slog.String("provider_id", providerID))
			return nil
		}
		return err
	}

	providerSub, err := s.provider.GetSubscription(ctx, providerID)
	if err != nil {
		return err
	}

	return s.reconcile(ctx, sub, providerSub.Status)
}

// SyncPending reconciles subscriptions still waiting on checkout, covering
// webhooks that never arrived.
func (s *BillingService) SyncPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.subs.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, sub := range pending {
		providerSub, err := s.provider.GetSubscription(ctx, *sub.ProviderID)
		if err != nil {
			s.logger.Warn("failed to fetch provider subscription",
				slog.String("subscription_id", sub.ID), slog.Any("error", err))
			continue
		}
		if err := s.reconcile(ctx, sub, providerSub.Status); err != nil {
			s.logger.Warn("failed to reconcile subscription",
				slog.String("subscription_id", sub.ID), slog.Any("error", err))
			continue
		}
		synced++
	}

	return synced, nil
}

func (s *BillingService) reconcile(ctx context.Context, sub *models.Subscription, providerStatus string) error {
	status := mapProviderStatus(providerStatus)
	if status == sub.Status {
		return nil
	}

	switch status {
	case models.SubscriptionAuthorized:
		if err := s.subs.UpdateStatusAndPlan(ctx, sub.ID, status, sub.UserID, sub.PlanID); err != nil {
			return err
		}
	case models.SubscriptionCancelled, models.SubscriptionPaused:
		if err := s.subs.UpdateStatusAndPlan(ctx, sub.ID, status, sub.UserID, models.DefaultPlanID); err != nil {
			return err
		}
	default:
		if err := s.subs.UpdateStatus(ctx, sub.ID, status); err != nil {
			return err
		}
	}

	s.logger.Info("subscription reconciled",
		slog.String("subscription_id", sub.ID),
		slog.String("from", sub.Status),
		slog.String("to", status))
	return nil
}

func mapProviderStatus(providerStatus string) string {
	switch providerStatus {
	case "authorized":
		return models.SubscriptionAuthorized
	case "paused":
		return models.SubscriptionPaused
	case "cancelled":
		return models.SubscriptionCancelled
	default:
		return models.SubscriptionPending
	}
}
