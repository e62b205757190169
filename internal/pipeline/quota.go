package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// QuotaGate limits how many analyses an identity may run per day. The
// server checks it before a run and records a run only after it succeeds.
type QuotaGate interface {
	WithinLimit(ctx context.Context, identity string) (bool, error)
	Record(ctx context.Context, identity string) error
}

// AllowAll is a QuotaGate with no limit
type AllowAll struct{}

func (AllowAll) WithinLimit(ctx context.Context, identity string) (bool, error) { return true, nil }
func (AllowAll) Record(ctx context.Context, identity string) error              { return nil }

const quotaKeyPrefix = "truthquest:quota:"

// quotaKey buckets usage by UTC calendar day
func quotaKey(identity string, now time.Time) string {
	return quotaKeyPrefix + now.UTC().Format("2006-01-02") + ":" + identity
}

// MemoryQuota counts runs per identity per day in process memory
type MemoryQuota struct {
	limit  int
	counts *gocache.Cache
	mu     sync.Mutex
	now    func() time.Time
}

// NewMemoryQuota creates an in-memory daily quota of limit runs
func NewMemoryQuota(limit int) *MemoryQuota {
	return &MemoryQuota{
		limit:  limit,
		counts: gocache.New(25*time.Hour, time.Hour),
		now:    time.Now,
	}
}

// WithinLimit implements QuotaGate
func (q *MemoryQuota) WithinLimit(ctx context.Context, identity string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count(identity) < q.limit, nil
}

// Record implements QuotaGate
func (q *MemoryQuota) Record(ctx context.Context, identity string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counts.Set(quotaKey(identity, q.now()), q.count(identity)+1, gocache.DefaultExpiration)
	return nil
}

func (q *MemoryQuota) count(identity string) int {
	v, ok := q.counts.Get(quotaKey(identity, q.now()))
	if !ok {
		return 0
	}
	n, _ := v.(int)
	return n
}

// RedisQuota counts runs per identity per day in redis, shared across
// server instances
type RedisQuota struct {
	limit int
	rdb   *redis.Client
	now   func() time.Time
}

// NewRedisQuota connects to the redis:// URL
func NewRedisQuota(url string, limit int) (*RedisQuota, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisQuotaFromClient(redis.NewClient(opts), limit), nil
}

// NewRedisQuotaFromClient uses an existing client
func NewRedisQuotaFromClient(rdb *redis.Client, limit int) *RedisQuota {
	return &RedisQuota{limit: limit, rdb: rdb, now: time.Now}
}

// WithinLimit implements QuotaGate
func (q *RedisQuota) WithinLimit(ctx context.Context, identity string) (bool, error) {
	raw, err := q.rdb.Get(ctx, quotaKey(identity, q.now())).Result()
	if errors.Is(err, redis.Nil) {
		return q.limit > 0, nil
	}
	if err != nil {
		return false, fmt.Errorf("read quota: %w", err)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return false, fmt.Errorf("read quota: %w", err)
	}
	return n < q.limit, nil
}

// Record implements QuotaGate
func (q *RedisQuota) Record(ctx context.Context, identity string) error {
	key := quotaKey(identity, q.now())
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 25*time.Hour)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record quota: %w", err)
	}
	return nil
}

// Close releases the redis connection
func (q *RedisQuota) Close() error {
	return q.rdb.Close()
}
