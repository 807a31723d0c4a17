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

// BusinessRepository persists business profiles. Every read is scoped by the
// owning user id; a row owned by someone else behaves as absent.
type BusinessRepository struct {
	pool *pgxpool.Pool
}

func NewBusinessRepository(db *database.DB) *BusinessRepository {
	return &BusinessRepository{pool: db.Pool}
}

const businessColumns = `id, user_id, name, description, category, phone, address, created_at, updated_at`

func scanBusinessRow(scanner rowScanner) (*models.Business, error) {
	var b models.Business
	err := scanner.Scan(
		&b.ID, &b.UserID, &b.Name, &b.Description, &b.Category,
		&b.Phone, &b.Address, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &b, nil
}

func (r *BusinessRepository) Create(ctx context.Context, business *models.Business) (*models.Business, error) {
	business.ID = uuid.New().String()
	now := time.Now()
	business.CreatedAt = now
	business.UpdatedAt = now

	query := `
		INSERT INTO businesses (id, user_id, name, description, category, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + businessColumns

	return scanBusinessRow(r.pool.QueryRow(ctx, query,
		business.ID, business.UserID, business.Name, business.Description,
		business.Category, business.Phone, business.Address,
		business.CreatedAt, business.UpdatedAt,
	))
}

func (r *BusinessRepository) GetByID(ctx context.Context, id, userID string) (*models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1 AND user_id = $2`
	return scanBusinessRow(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *BusinessRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	defer rows.Close()

	businesses := make([]*models.Business, 0)
	for rows.Next() {
		b, err := scanBusinessRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return businesses, nil
}

func (r *BusinessRepository) Update(ctx context.Context, business *models.Business) (*models.Business, error) {
	business.UpdatedAt = time.Now()

	query := `
		UPDATE businesses
		SET name = $1, description = $2, category = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
		RETURNING ` + businessColumns

	return scanBusinessRow(r.pool.QueryRow(ctx, query,
		business.Name, business.Description, business.Category,
		business.Phone, business.Address, business.UpdatedAt,
		business.ID, business.UserID,
	))
}

func (r *BusinessRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM businesses WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
