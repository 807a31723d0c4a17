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

type InteractionRepository struct {
	pool *pgxpool.Pool
}

func NewInteractionRepository(db *database.DB) *InteractionRepository {
	return &InteractionRepository{pool: db.Pool}
}

const interactionColumns = `id, contact_id, user_id, kind, summary, occurred_at, created_at`

func (r *InteractionRepository) Create(ctx context.Context, interaction *models.Interaction) (*models.Interaction, error) {
	interaction.ID = uuid.New().String()
	interaction.CreatedAt = time.Now()
	if interaction.OccurredAt.IsZero() {
		interaction.OccurredAt = interaction.CreatedAt
	}

	query := `
		INSERT INTO interactions (id, contact_id, user_id, kind, summary, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + interactionColumns

	var out models.Interaction
	err := r.pool.QueryRow(ctx, query,
		interaction.ID, interaction.ContactID, interaction.UserID,
		interaction.Kind, interaction.Summary, interaction.OccurredAt, interaction.CreatedAt,
	).Scan(&out.ID, &out.ContactID, &out.UserID, &out.Kind, &out.Summary, &out.OccurredAt, &out.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &out, nil
}

func (r *InteractionRepository) ListByContact(ctx context.Context, contactID, userID string, limit, offset int) ([]*models.Interaction, error) {
	query := `
		SELECT ` + interactionColumns + `
		FROM interactions
		WHERE contact_id = $1 AND user_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, contactID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]*models.Interaction, 0)
	for rows.Next() {
		var i models.Interaction
		if err := rows.Scan(&i.ID, &i.ContactID, &i.UserID, &i.Kind, &i.Summary, &i.OccurredAt, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return interactions, nil
}

func (r *InteractionRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM interactions WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
