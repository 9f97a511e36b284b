package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edumind/auth-service/internal/domain"
)

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, tenant_id, roles, permissions,
	first_name, last_name, avatar_url, preferences,
	created_at, updated_at, last_login_at, login_count, is_active, password_change_required`

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	prefs, err := json.Marshal(user.Profile.Preferences)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.TenantID,
		user.Roles,
		user.Permissions,
		user.Profile.FirstName,
		user.Profile.LastName,
		user.Profile.AvatarURL,
		prefs,
		user.Metadata.CreatedAt,
		user.Metadata.UpdatedAt,
		user.Metadata.LastLoginAt,
		user.Metadata.LoginCount,
		user.Metadata.IsActive,
		user.Metadata.PasswordChangeRequired,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// Update updates a user
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	prefs, err := json.Marshal(user.Profile.Preferences)
	if err != nil {
		return err
	}
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, tenant_id = $4, roles = $5, permissions = $6,
		    first_name = $7, last_name = $8, avatar_url = $9, preferences = $10,
		    updated_at = $11, last_login_at = $12, login_count = $13,
		    is_active = $14, password_change_required = $15
		WHERE id = $1
	`
	user.Metadata.UpdatedAt = time.Now()
	_, err = r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.TenantID,
		user.Roles,
		user.Permissions,
		user.Profile.FirstName,
		user.Profile.LastName,
		user.Profile.AvatarURL,
		prefs,
		user.Metadata.UpdatedAt,
		user.Metadata.LastLoginAt,
		user.Metadata.LoginCount,
		user.Metadata.IsActive,
		user.Metadata.PasswordChangeRequired,
	)
	return err
}

func (r *PostgresUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	var prefs []byte
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.TenantID,
		&user.Roles,
		&user.Permissions,
		&user.Profile.FirstName,
		&user.Profile.LastName,
		&user.Profile.AvatarURL,
		&prefs,
		&user.Metadata.CreatedAt,
		&user.Metadata.UpdatedAt,
		&user.Metadata.LastLoginAt,
		&user.Metadata.LoginCount,
		&user.Metadata.IsActive,
		&user.Metadata.PasswordChangeRequired,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &user.Profile.Preferences); err != nil {
			return nil, err
		}
	}
	return user, nil
}
