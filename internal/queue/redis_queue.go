package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisAuditQueue backs the FIFO with a Redis list: RPUSH to append, LPOP to
// pop. List order is the submission order across all users.
type RedisAuditQueue struct {
	client redis.UniversalClient
	key    string
}

func NewRedisAuditQueue(client redis.UniversalClient, key string) *RedisAuditQueue {
	if key == "" {
		key = "audit_queue"
	}
	return &RedisAuditQueue{client: client, key: key}
}

func (q *RedisAuditQueue) Enqueue(ctx context.Context, id uint) error {
	if err := q.client.RPush(ctx, q.key, strconv.FormatUint(uint64(id), 10)).Err(); err != nil {
		return fmt.Errorf("enqueue audit request %d: %w", id, err)
	}
	return nil
}

func (q *RedisAuditQueue) Dequeue(ctx context.Context) (uint, bool, error) {
	raw, err := q.client.LPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("dequeue audit request: %w", err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed queue entry %q: %w", raw, err)
	}
	return uint(id), true, nil
}

func (q *RedisAuditQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
