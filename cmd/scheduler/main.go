package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"daily-fortune/internal/domain"
	"daily-fortune/internal/infra/cache"
	"daily-fortune/internal/infra/config"
	applog "daily-fortune/internal/infra/log"
	"daily-fortune/internal/infra/queue"
)

const dateLayout = "2006-01-02"

// Планировщик раз в минуту проверяет, наступил ли час агрегации, и ставит
// задачу в очередь. Redis-замок гарантирует одну задачу на дату даже при
// нескольких экземплярах планировщика; пересчёт сам по себе идемпотентен,
// так что повтор после истечения замка не опасен.
func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.FortuneTZ).Msg("scheduler: некорректный опорный часовой пояс")
	}

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("scheduler: не указан адрес Redis (REDIS_ADDR)")
	}
	redisCache := cache.NewRedis(cfg.RedisAddr)

	var jobs domain.AggregateQueue
	if cfg.RabbitURL != "" {
		rabbit, err := queue.NewRabbitAggregateQueue(cfg.RabbitURL, cfg.Aggregation.QueueKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("scheduler: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbit.Close()
		jobs = rabbit
	} else {
		jobs = queue.NewRedisAggregateQueue(redisCache.Client(), cfg.Aggregation.QueueKey)
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			local := now.In(loc)
			if local.Hour() != cfg.Aggregation.Hour {
				continue
			}
			date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
			key := "aggregate:" + date.Format(dateLayout)
			err := redisCache.Once(key, 48*time.Hour, func() error {
				return jobs.Enqueue(ctx, domain.AggregateJob{
					Date:        date,
					RequestedAt: now.UTC(),
					Cause:       domain.AggregateCauseScheduled,
				})
			})
			if err != nil {
				logger.Error().Err(err).Str("date", date.Format(dateLayout)).Msg("scheduler: не удалось поставить задачу")
			}
		}
	}
}
