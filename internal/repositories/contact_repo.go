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

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{pool: db.Pool}
}

const contactColumns = `id, user_id, name, email, phone, company, notes, created_at, updated_at`

func scanContactRow(scanner rowScanner) (*models.Contact, error) {
	var c models.Contact
	err := scanner.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone,
		&c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	contact.ID = uuid.New().String()
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	query := `
		INSERT INTO contacts (id, user_id, name, email, phone, company, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + contactColumns

	return scanContactRow(r.pool.QueryRow(ctx, query,
		contact.ID, contact.UserID, contact.Name, contact.Email,
		contact.Phone, contact.Company, contact.Notes,
		contact.CreatedAt, contact.UpdatedAt,
	))
}

func (r *ContactRepository) GetByID(ctx context.Context, id, userID string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	return scanContactRow(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ContactRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContactRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contacts, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	contact.UpdatedAt = time.Now()

	query := `
		UPDATE contacts
		SET name = $1, email = $2, phone = $3, company = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
		RETURNING ` + contactColumns

	return scanContactRow(r.pool.QueryRow(ctx, query,
		contact.Name, contact.Email, contact.Phone, contact.Company,
		contact.Notes, contact.UpdatedAt, contact.ID, contact.UserID,
	))
}

func (r *ContactRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM contacts WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
