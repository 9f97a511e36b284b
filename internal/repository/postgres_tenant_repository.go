package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edumind/auth-service/internal/domain"
)

// PostgresTenantRepository implements TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTenantRepository creates a new PostgresTenantRepository
func NewPostgresTenantRepository(pool *pgxpool.Pool) *PostgresTenantRepository {
	return &PostgresTenantRepository{pool: pool}
}

const tenantColumns = `id, name, domain, primary_color, logo_url, features,
	max_users, max_storage_mb, max_api_calls, status,
	created_at, updated_at, subscription_ends_at`

// Create creates a new tenant
func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	features, err := json.Marshal(tenant.Settings.Features)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Domain,
		tenant.Settings.PrimaryColor,
		tenant.Settings.LogoURL,
		features,
		tenant.Settings.Limits.MaxUsers,
		tenant.Settings.Limits.MaxStorageMB,
		tenant.Settings.Limits.MaxAPICalls,
		tenant.Status,
		tenant.Metadata.CreatedAt,
		tenant.Metadata.UpdatedAt,
		tenant.Metadata.SubscriptionEndsAt,
	)
	return err
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	tenant, err := scanTenant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tenant, nil
}

// List retrieves all tenants
func (r *PostgresTenantRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	tenant := &domain.Tenant{}
	var features []byte
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Domain,
		&tenant.Settings.PrimaryColor,
		&tenant.Settings.LogoURL,
		&features,
		&tenant.Settings.Limits.MaxUsers,
		&tenant.Settings.Limits.MaxStorageMB,
		&tenant.Settings.Limits.MaxAPICalls,
		&tenant.Status,
		&tenant.Metadata.CreatedAt,
		&tenant.Metadata.UpdatedAt,
		&tenant.Metadata.SubscriptionEndsAt,
	)
	if err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &tenant.Settings.Features); err != nil {
			return nil, err
		}
	}
	return tenant, nil
}
