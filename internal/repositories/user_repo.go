package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrossig/vidriera/internal/database"
	"github.com/mrossig/vidriera/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner lets single-row and multi-row scans share one code path
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, name, email, password_hash, oauth_id, provider, plan_id, created_at, last_login_at`

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.OAuthID, &user.Provider, &user.PlanID,
		&user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByOAuthID(ctx context.Context, oauthID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, oauthID))
}

// Create inserts a user. The caller assigns the id: a generated UUID for
// password accounts, the provider subject id for OAuth accounts.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()

	if user.PlanID == "" {
		user.PlanID = models.DefaultPlanID
	}
	if user.Provider == "" {
		user.Provider = models.ProviderEmail
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, oauth_id, provider, plan_id, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.OAuthID, user.Provider, user.PlanID,
		user.CreatedAt, user.LastLoginAt,
	))
}

// UpdateLastLogin stamps the user's last successful authentication.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePlan moves the user onto a different plan.
func (r *UserRepository) UpdatePlan(ctx context.Context, id, planID string) error {
	query := `UPDATE users SET plan_id = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, planID, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
