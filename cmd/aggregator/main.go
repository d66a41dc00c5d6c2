package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"daily-fortune/internal/adapters/repo"
	"daily-fortune/internal/domain"
	"daily-fortune/internal/infra/cache"
	"daily-fortune/internal/infra/config"
	"daily-fortune/internal/infra/db"
	applog "daily-fortune/internal/infra/log"
	"daily-fortune/internal/infra/metrics"
	"daily-fortune/internal/infra/queue"
	statsusecase "daily-fortune/internal/usecase/stats"
)

const dateLayout = "2006-01-02"

func main() {
	dateFlag := flag.String("date", "", "пересчитать статистику за дату (YYYY-MM-DD) и выйти")
	flag.Parse()

	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN, 5)
	if err != nil {
		logger.Fatal().Err(err).Msg("aggregator: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	aggregator := statsusecase.NewAggregator(repoAdapter, repoAdapter,
		logger.With().Str("component", "aggregator").Logger())

	// Ручной перезапуск за произвольную дату: безопасен, агрегаты
	// перезаписываются по ключу (дата, знак).
	if *dateFlag != "" {
		date, err := time.Parse(dateLayout, *dateFlag)
		if err != nil {
			logger.Fatal().Err(err).Str("date", *dateFlag).Msg("aggregator: дата должна быть в формате YYYY-MM-DD")
		}
		result, err := aggregator.Aggregate(ctx, date)
		if err != nil {
			logger.Fatal().Err(err).Msg("aggregator: пересчёт не удался")
		}
		logger.Info().Int("signs", len(result.Stats)).Int("excluded", result.Excluded).Msg("aggregator: готово")
		return
	}

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	aggregateQueue := buildQueue(cfg, logger)
	runWorker(ctx, logger, aggregateQueue, aggregator)
}

func buildQueue(cfg config.AppConfig, logger zerolog.Logger) domain.AggregateQueue {
	if cfg.RabbitURL != "" {
		q, err := queue.NewRabbitAggregateQueue(cfg.RabbitURL, cfg.Aggregation.QueueKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("aggregator: не удалось инициализировать очередь RabbitMQ")
		}
		return q
	}
	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("aggregator: нужен REDIS_ADDR или RABBITMQ_URL")
	}
	redisCache := cache.NewRedis(cfg.RedisAddr)
	return queue.NewRedisAggregateQueue(redisCache.Client(), cfg.Aggregation.QueueKey)
}

func runWorker(ctx context.Context, logger zerolog.Logger, jobs domain.AggregateQueue, aggregator *statsusecase.Aggregator) {
	for {
		job, ack, err := jobs.Receive(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("aggregator: ошибка чтения очереди")
			continue
		}
		_, err = aggregator.Aggregate(ctx, job.Date)
		if err != nil {
			logger.Error().Err(err).Str("date", job.Date.Format(dateLayout)).Msg("aggregator: пересчёт не удался")
		}
		if ackErr := ack(err == nil); ackErr != nil {
			logger.Error().Err(ackErr).Msg("aggregator: не удалось подтвердить задачу")
		}
	}
}
