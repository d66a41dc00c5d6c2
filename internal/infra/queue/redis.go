package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"daily-fortune/internal/domain"
)

// RedisAggregateQueue реализует очередь задач агрегации на базе Redis lists.
// Подтверждение доставки отсутствует: BRPop снимает задачу сразу.
type RedisAggregateQueue struct {
	client *redis.Client
	key    string
}

var _ domain.AggregateQueue = (*RedisAggregateQueue)(nil)

// NewRedisAggregateQueue создаёт очередь по указанному ключу.
func NewRedisAggregateQueue(client *redis.Client, key string) *RedisAggregateQueue {
	return &RedisAggregateQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisAggregateQueue) Enqueue(ctx context.Context, job domain.AggregateJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу из очереди.
func (q *RedisAggregateQueue) Receive(ctx context.Context) (domain.AggregateJob, domain.AggregateAckFunc, error) {
	noopAck := domain.AggregateAckFunc(func(bool) error { return nil })
	for {
		if err := ctx.Err(); err != nil {
			return domain.AggregateJob{}, noopAck, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.AggregateJob{}, noopAck, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.AggregateJob{}, noopAck, err
		}
		if len(res) != 2 {
			return domain.AggregateJob{}, noopAck, errors.New("redis queue: unexpected response")
		}
		var job domain.AggregateJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.AggregateJob{}, noopAck, fmt.Errorf("decode job: %w", err)
		}
		return job, noopAck, nil
	}
}
