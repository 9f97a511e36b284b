package repository

import (
	"context"

	"github.com/edumind/auth-service/internal/domain"
)

// UserRepository defines the data access interface for users.
// Implementations return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// TenantRepository defines the data access interface for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]*domain.Tenant, error)
}

// RefreshTokenRepository tracks outstanding refresh tokens keyed by the
// raw token value. Consume must be atomic: when two concurrent refreshes
// race on the same token, exactly one may receive the record.
type RefreshTokenRepository interface {
	Save(ctx context.Context, token string, record *domain.RefreshTokenRecord) error
	// Consume removes the record for token and returns it, or (nil, nil)
	// if the token is unknown.
	Consume(ctx context.Context, token string) (*domain.RefreshTokenRecord, error)
	Delete(ctx context.Context, token string) error
	DeleteBySubject(ctx context.Context, subjectID string) error
}
