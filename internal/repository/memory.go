package repository

import (
	"context"
	"sync"
	"time"

	"github.com/edumind/auth-service/internal/domain"
)

// MemoryUserRepository implements UserRepository with mutex-guarded maps.
// Used as the development/test backend.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	users      map[string]*domain.User
	emailIndex map[string]string // email -> user id
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[u.ID] = &u
	r.emailIndex[u.Email] = u.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emailIndex[email]
	if !ok {
		return nil, nil
	}
	u := *r.users[id]
	return &u, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.users[user.ID]; ok && old.Email != user.Email {
		delete(r.emailIndex, old.Email)
	}
	u := *user
	u.Metadata.UpdatedAt = time.Now()
	r.users[u.ID] = &u
	r.emailIndex[u.Email] = u.ID
	return nil
}

// MemoryTenantRepository implements TenantRepository with a mutex-guarded map.
type MemoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant
}

// NewMemoryTenantRepository creates an empty in-memory tenant repository.
func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{tenants: make(map[string]*domain.Tenant)}
}

func (r *MemoryTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := *tenant
	r.tenants[t.ID] = &t
	return nil
}

func (r *MemoryTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	t := *tenant
	return &t, nil
}

func (r *MemoryTenantRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenants := make([]*domain.Tenant, 0, len(r.tenants))
	for _, tenant := range r.tenants {
		t := *tenant
		tenants = append(tenants, &t)
	}
	return tenants, nil
}

// MemoryRefreshTokenRepository implements RefreshTokenRepository with a
// single mutex. Consume holds the lock across lookup and delete so that
// concurrent refreshes on one token cannot both succeed.
type MemoryRefreshTokenRepository struct {
	mu      sync.Mutex
	records map[string]*domain.RefreshTokenRecord
}

// NewMemoryRefreshTokenRepository creates an empty in-memory refresh token store.
func NewMemoryRefreshTokenRepository() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{records: make(map[string]*domain.RefreshTokenRecord)}
}

func (r *MemoryRefreshTokenRepository) Save(ctx context.Context, token string, record *domain.RefreshTokenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	r.records[token] = &rec
	return nil
}

func (r *MemoryRefreshTokenRepository) Consume(ctx context.Context, token string) (*domain.RefreshTokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[token]
	if !ok {
		return nil, nil
	}
	delete(r.records, token)
	return record, nil
}

func (r *MemoryRefreshTokenRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, token)
	return nil
}

func (r *MemoryRefreshTokenRepository) DeleteBySubject(ctx context.Context, subjectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, record := range r.records {
		if record.SubjectID == subjectID {
			delete(r.records, token)
		}
	}
	return nil
}
