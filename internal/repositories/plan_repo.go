package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrossig/vidriera/internal/database"
	"github.com/mrossig/vidriera/internal/models"
)

type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(db *database.DB) *PlanRepository {
	return &PlanRepository{pool: db.Pool}
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	query := `SELECT id, name, monthly_price, currency, features, created_at FROM plans WHERE id = $1`

	var plan models.Plan
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&plan.ID, &plan.Name, &plan.MonthlyPrice, &plan.Currency, &plan.Features, &plan.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &plan, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]*models.Plan, error) {
	query := `SELECT id, name, monthly_price, currency, features, created_at FROM plans ORDER BY monthly_price ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	plans := make([]*models.Plan, 0)
	for rows.Next() {
		var plan models.Plan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.MonthlyPrice, &plan.Currency, &plan.Features, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, &plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return plans, nil
}
