package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/edumind/auth-service/internal/domain"
	"github.com/edumind/auth-service/pkg/redis"
)

const (
	refreshKeyPrefix  = "auth:refresh:"
	subjectKeyPrefix  = "auth:refresh:subject:"
	subjectSetPadding = time.Hour // subject index outlives its tokens slightly
)

// RedisRefreshTokenRepository implements RefreshTokenRepository on Redis.
// GETDEL makes Consume atomic across service instances; key TTLs handle
// expiry without a sweeper. A per-subject set backs DeleteBySubject.
type RedisRefreshTokenRepository struct {
	client *redis.Client
}

// NewRedisRefreshTokenRepository creates a new RedisRefreshTokenRepository
func NewRedisRefreshTokenRepository(client *redis.Client) *RedisRefreshTokenRepository {
	return &RedisRefreshTokenRepository{client: client}
}

func (r *RedisRefreshTokenRepository) Save(ctx context.Context, token string, record *domain.RefreshTokenRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to track
	}
	if err := r.client.Set(ctx, refreshKeyPrefix+token, payload, ttl).Err(); err != nil {
		return err
	}
	subjectKey := subjectKeyPrefix + record.SubjectID
	if err := r.client.SAdd(ctx, subjectKey, token).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, subjectKey, ttl+subjectSetPadding).Err()
}

func (r *RedisRefreshTokenRepository) Consume(ctx context.Context, token string) (*domain.RefreshTokenRecord, error) {
	payload, err := r.client.GetDel(ctx, refreshKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	record := &domain.RefreshTokenRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, err
	}
	_ = r.client.SRem(ctx, subjectKeyPrefix+record.SubjectID, token).Err()
	return record, nil
}

func (r *RedisRefreshTokenRepository) Delete(ctx context.Context, token string) error {
	record, err := r.Consume(ctx, token)
	if err != nil || record == nil {
		return err
	}
	return nil
}

func (r *RedisRefreshTokenRepository) DeleteBySubject(ctx context.Context, subjectID string) error {
	subjectKey := subjectKeyPrefix + subjectID
	tokens, err := r.client.SMembers(ctx, subjectKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, refreshKeyPrefix+token)
	}
	keys = append(keys, subjectKey)
	return r.client.Del(ctx, keys...).Err()
}
