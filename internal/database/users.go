package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khushik17/notesweb/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, provider_uid, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.ProviderUID,
		user.Email,
		user.Name,
		now,
		now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByProviderUID retrieves a user by identity-provider subject.
// Wraps sql.ErrNoRows so callers can errors.Is on it.
func (r *UserRepository) GetByProviderUID(ctx context.Context, providerUID string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, provider_uid, email, name, created_at, updated_at
		FROM users
		WHERE provider_uid = $1
	`

	err := r.db.QueryRowContext(ctx, query, providerUID).Scan(
		&user.ID,
		&user.ProviderUID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by provider UID: %w", err)
	}

	return user, nil
}

// FindOrCreate returns the user for the given provider subject, creating it
// on first use. Safe under concurrent first requests from the same new
// subject: the insert is ON CONFLICT DO NOTHING on the provider_uid unique
// constraint, and a conflict falls back to the winning row.
func (r *UserRepository) FindOrCreate(ctx context.Context, providerUID, email string, name *string) (*models.User, error) {
	user, err := r.GetByProviderUID(ctx, providerUID)
	if err == nil {
		return user, nil
	}

	now := time.Now()
	user = &models.User{
		ID:          uuid.New(),
		ProviderUID: providerUID,
		Email:       email,
		Name:        name,
	}

	query := `
		INSERT INTO users (id, provider_uid, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider_uid) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		user.ID,
		user.ProviderUID,
		user.Email,
		user.Name,
		now,
		now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		// Lost the insert race; another request created the row
		return r.GetByProviderUID(ctx, providerUID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		time.Now(),
	).Scan(&user.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}
