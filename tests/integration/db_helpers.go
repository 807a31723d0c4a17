package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mrossig/vidriera/internal/database"
	"github.com/mrossig/vidriera/internal/database/migrations"
	"github.com/mrossig/vidriera/internal/models"
	pkgauth "github.com/mrossig/vidriera/pkg/auth"
)

// TestDB manages a PostgreSQL testcontainer and its connection pool.
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase starts a PostgreSQL container, applies the embedded
// migrations and returns a ready TestDB.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("vidriera"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, connStr); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         database.NewFromPool(pool, logger),
	}, nil
}

// runMigrations applies the embedded goose migrations. Goose drives
// migrations through database/sql, so a separate handle is opened.
func runMigrations(ctx context.Context, connStr string) error {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Teardown stops the container and closes the connection pool.
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all mutable tables for test isolation. The plans
// catalog seeded by the migrations is left in place.
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"interactions",
		"activities",
		"contacts",
		"sites",
		"businesses",
		"subscriptions",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

// SeedUser inserts a password account directly, bypassing the register
// endpoint.
func SeedUser(ctx context.Context, pool *pgxpool.Pool, email, password string) (*models.User, error) {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, provider, plan_id, created_at)
		VALUES ($1, $2, $3, $4, 'email', 'free', NOW())
		RETURNING id, name, email, password_hash, provider, plan_id, created_at
	`

	var user models.User
	err = pool.QueryRow(ctx, query, uuid.New().String(), "Test User", email, hash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Provider,
		&user.PlanID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

// SeedBusiness inserts a business owned by the given user.
func SeedBusiness(ctx context.Context, pool *pgxpool.Pool, userID, name string) (string, error) {
	query := `
		INSERT INTO businesses (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`

	var id string
	if err := pool.QueryRow(ctx, query, uuid.New().String(), userID, name).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to insert business: %w", err)
	}
	return id, nil
}

// SeedSite inserts a site for a business, published or not.
func SeedSite(ctx context.Context, pool *pgxpool.Pool, businessID, subdomain string, published bool) (string, error) {
	query := `
		INSERT INTO sites (id, business_id, subdomain, style, content, published, created_at, updated_at)
		VALUES ($1, $2, $3, '{}', '{}', $4, NOW(), NOW())
		RETURNING id
	`

	var id string
	if err := pool.QueryRow(ctx, query, uuid.New().String(), businessID, subdomain, published).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to insert site: %w", err)
	}
	return id, nil
}
