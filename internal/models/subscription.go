package models

import "time"

// Subscription statuses mirror the MercadoPago preapproval lifecycle.
const (
	SubscriptionPending    = "pending"
	SubscriptionAuthorized = "authorized"
	SubscriptionPaused     = "paused"
	SubscriptionCancelled  = "cancelled"
)

// Subscription links a user to a paid plan through a MercadoPago preapproval.
// ProviderID is nil until the provider accepts the create call; free-plan
// subscriptions never get one.
type Subscription struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PlanID     string    `json:"plan_id"`
	ProviderID *string   `json:"-"`
	Status     string    `json:"status"`
	InitPoint  string    `json:"init_point"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Active reports whether the subscription currently grants the plan.
func (s *Subscription) Active() bool {
	return s.Status == SubscriptionAuthorized || s.Status == SubscriptionPending
}
