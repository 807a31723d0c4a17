package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrossig/vidriera/internal/database"
	"github.com/mrossig/vidriera/internal/models"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{pool: db.Pool}
}

const activityColumns = `id, user_id, contact_id, title, due_at, done, created_at, updated_at`

func scanActivityRow(scanner rowScanner) (*models.Activity, error) {
	var a models.Activity
	err := scanner.Scan(
		&a.ID, &a.UserID, &a.ContactID, &a.Title,
		&a.DueAt, &a.Done, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	activity.ID = uuid.New().String()
	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	query := `
		INSERT INTO activities (id, user_id, contact_id, title, due_at, done, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + activityColumns

	return scanActivityRow(r.pool.QueryRow(ctx, query,
		activity.ID, activity.UserID, activity.ContactID, activity.Title,
		activity.DueAt, activity.Done, activity.CreatedAt, activity.UpdatedAt,
	))
}

func (r *ActivityRepository) GetByID(ctx context.Context, id, userID string) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1 AND user_id = $2`
	return scanActivityRow(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1
		ORDER BY done ASC, due_at ASC NULLS LAST
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]*models.Activity, 0)
	for rows.Next() {
		a, err := scanActivityRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return activities, nil
}

func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	activity.UpdatedAt = time.Now()

	query := `
		UPDATE activities
		SET title = $1, due_at = $2, done = $3, contact_id = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
		RETURNING ` + activityColumns

	return scanActivityRow(r.pool.QueryRow(ctx, query,
		activity.Title, activity.DueAt, activity.Done, activity.ContactID,
		activity.UpdatedAt, activity.ID, activity.UserID,
	))
}

func (r *ActivityRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM activities WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
