package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrossig/vidriera/internal/database"
	"github.com/mrossig/vidriera/internal/models"
)

type SubscriptionRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(db *database.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, pool: db.Pool}
}

const subscriptionColumns = `id, user_id, plan_id, provider_id, status, init_point, created_at, updated_at`

func scanSubscriptionRow(scanner rowScanner) (*models.Subscription, error) {
	var s models.Subscription
	err := scanner.Scan(
		&s.ID, &s.UserID, &s.PlanID, &s.ProviderID,
		&s.Status, &s.InitPoint, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	sub.ID = uuid.New().String()
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query := `
		INSERT INTO subscriptions (id, user_id, plan_id, provider_id, status, init_point, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + subscriptionColumns

	return scanSubscriptionRow(r.pool.QueryRow(ctx, query,
		sub.ID, sub.UserID, sub.PlanID, sub.ProviderID,
		sub.Status, sub.InitPoint, sub.CreatedAt, sub.UpdatedAt,
	))
}

// GetCurrentByUser returns the most recent non-cancelled subscription.
func (r *SubscriptionRepository) GetCurrentByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND status != 'cancelled'
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanSubscriptionRow(r.pool.QueryRow(ctx, query, userID))
}

func (r *SubscriptionRepository) GetByProviderID(ctx context.Context, providerID string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE provider_id = $1`
	return scanSubscriptionRow(r.pool.QueryRow(ctx, query, providerID))
}

// SetProvider stores the provider-side id and checkout URL once the provider
// accepts the preapproval create call.
func (r *SubscriptionRepository) SetProvider(ctx context.Context, id, providerID, initPoint string) error {
	query := `UPDATE subscriptions SET provider_id = $1, init_point = $2, updated_at = $3 WHERE id = $4`

	result, err := r.pool.Exec(ctx, query, providerID, initPoint, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE subscriptions SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateStatusAndPlan moves a subscription to a new status and the owning
// user to a new plan in a single transaction. A subscription status and its
// user's plan must never diverge, so the two writes commit or roll back
// together.
func (r *SubscriptionRepository) UpdateStatusAndPlan(ctx context.Context, id, status, userID, planID string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `UPDATE subscriptions SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		result, err = tx.Exec(ctx, `UPDATE users SET plan_id = $1 WHERE id = $2`, planID, userID)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// ListPending returns subscriptions awaiting provider confirmation, for the
// background reconciliation loop.
func (r *SubscriptionRepository) ListPending(ctx context.Context, limit int) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = 'pending' AND provider_id IS NOT NULL
		ORDER BY updated_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*models.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscriptionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subs, nil
}
