package receipts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores receipts as JSON under "submission:<id>" with a fixed
// retention TTL. Receipts are a reconciliation aid, not an audit log; the
// authoritative document state lives in the registry.
type RedisRepository struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedisRepository creates a Redis-based receipt repository. Prefix may be
// empty; retention <= 0 falls back to 24h.
func NewRedisRepository(client *redis.Client, prefix string, retention time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = "submission:"
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &RedisRepository{client: client, prefix: prefix, retention: retention}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + id
}

func (r *RedisRepository) Save(ctx context.Context, rec *Receipt) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(rec.SubmissionID), b, r.retention).Err()
}

func (r *RedisRepository) Get(ctx context.Context, submissionID string) (*Receipt, error) {
	b, err := r.client.Get(ctx, r.key(submissionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var rec Receipt
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
