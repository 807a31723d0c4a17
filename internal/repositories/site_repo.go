package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrossig/vidriera/internal/database"
	"github.com/mrossig/vidriera/internal/models"
)

// SiteRepository persists builder sites. Ownership is indirect through the
// business row, so owner-scoped reads join against businesses.
type SiteRepository struct {
	pool *pgxpool.Pool
}

func NewSiteRepository(db *database.DB) *SiteRepository {
	return &SiteRepository{pool: db.Pool}
}

const siteColumns = `s.id, s.business_id, s.subdomain, s.published, s.style, s.content, s.created_at, s.updated_at`

func scanSiteRow(scanner rowScanner) (*models.Site, error) {
	var site models.Site
	err := scanner.Scan(
		&site.ID, &site.BusinessID, &site.Subdomain, &site.Published,
		&site.Style, &site.Content, &site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &site, nil
}

func (r *SiteRepository) Create(ctx context.Context, site *models.Site) (*models.Site, error) {
	site.ID = uuid.New().String()
	now := time.Now()
	site.CreatedAt = now
	site.UpdatedAt = now

	if site.Style == nil {
		site.Style = []byte(`{}`)
	}
	if site.Content == nil {
		site.Content = []byte(`{}`)
	}

	query := `
		INSERT INTO sites AS s (id, business_id, subdomain, published, style, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + siteColumns

	var created models.Site
	err := r.pool.QueryRow(ctx, query,
		site.ID, site.BusinessID, site.Subdomain, site.Published,
		site.Style, site.Content, site.CreatedAt, site.UpdatedAt,
	).Scan(
		&created.ID, &created.BusinessID, &created.Subdomain, &created.Published,
		&created.Style, &created.Content, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		// Two unique constraints can fire here: one site per business and
		// one business per subdomain. Tell them apart by constraint name
		// before the generic mapping collapses both to a conflict.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "business_id") {
			return nil, models.ErrBusinessHasSite
		}
		return nil, database.MapPostgresError(err)
	}
	return &created, nil
}

// GetByID returns the site only when the joined business belongs to userID.
func (r *SiteRepository) GetByID(ctx context.Context, id, userID string) (*models.Site, error) {
	query := `
		SELECT ` + siteColumns + `
		FROM sites s
		JOIN businesses b ON b.id = s.business_id
		WHERE s.id = $1 AND b.user_id = $2
	`
	return scanSiteRow(r.pool.QueryRow(ctx, query, id, userID))
}

// GetByBusiness returns the site attached to a business owned by userID.
func (r *SiteRepository) GetByBusiness(ctx context.Context, businessID, userID string) (*models.Site, error) {
	query := `
		SELECT ` + siteColumns + `
		FROM sites s
		JOIN businesses b ON b.id = s.business_id
		WHERE s.business_id = $1 AND b.user_id = $2
	`
	return scanSiteRow(r.pool.QueryRow(ctx, query, businessID, userID))
}

// GetBySubdomain is the public lookup used to render a published site.
func (r *SiteRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Site, error) {
	query := `
		SELECT ` + siteColumns + `
		FROM sites s
		WHERE s.subdomain = $1
	`
	return scanSiteRow(r.pool.QueryRow(ctx, query, subdomain))
}

func (r *SiteRepository) Update(ctx context.Context, site *models.Site, userID string) (*models.Site, error) {
	site.UpdatedAt = time.Now()

	query := `
		UPDATE sites AS s
		SET subdomain = $1, published = $2, style = $3, content = $4, updated_at = $5
		FROM businesses b
		WHERE s.id = $6 AND b.id = s.business_id AND b.user_id = $7
		RETURNING ` + siteColumns

	return scanSiteRow(r.pool.QueryRow(ctx, query,
		site.Subdomain, site.Published, site.Style, site.Content,
		site.UpdatedAt, site.ID, userID,
	))
}

func (r *SiteRepository) Delete(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM sites s
		USING businesses b
		WHERE s.id = $1 AND b.id = s.business_id AND b.user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
