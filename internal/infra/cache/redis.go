package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"daily-fortune/internal/domain"
)

// RedisCache реализует domain.Cache через Redis.
type RedisCache struct {
	client *redis.Client
}

var _ domain.Cache = (*RedisCache)(nil)

// NewRedis создаёт кэш по адресу сервера.
func NewRedis(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Client возвращает подключение для переиспользования другими адаптерами.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Once выполняет функцию, если ключ ещё не был захвачен. При ошибке
// функции ключ снимается, чтобы позволить повтор.
func (c *RedisCache) Once(key string, ttl time.Duration, fn func() error) error {
	ctx := context.Background()
	ok, err := c.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := fn(); err != nil {
		_ = c.client.Del(ctx, key).Err()
		return err
	}
	return nil
}
