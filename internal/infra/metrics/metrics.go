package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	FortunesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortunes_generated_total",
		Help: "Сколько дневных результатов вычислено и сохранено",
	})
	FortuneCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortune_cache_hits_total",
		Help: "Запросы, обслуженные сохранённой строкой",
	})
	FortuneCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortune_cache_misses_total",
		Help: "Запросы, потребовавшие вычисления",
	})
	FortuneInsertConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortune_insert_conflicts_total",
		Help: "Проигранные гонки вставки дневного результата",
	})
	MessagePoolFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "message_pool_fallbacks_total",
		Help: "Использования сообщения по умолчанию из-за пустого пула",
	})
	AggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aggregation_duration_seconds",
		Help:    "Время пересчёта дневной статистики",
		Buckets: prometheus.DefBuckets,
	})
	AggregationExcluded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aggregation_excluded_users",
		Help: "Неклассифицированные пользователи в последнем прогоне агрегации",
	})
	RankRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rank_requests_total",
		Help: "Запросы рейтинга по знакам",
	}, []string{"sign"})

	StorageRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_request_duration_seconds",
		Help:    "Длительность запросов к хранилищу",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "target", "status"})

	StorageRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_request_total",
		Help: "Количество запросов к хранилищу",
	}, []string{"operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		FortunesGenerated,
		FortuneCacheHits,
		FortuneCacheMisses,
		FortuneInsertConflicts,
		MessagePoolFallbacks,
		AggregationDuration,
		AggregationExcluded,
		RankRequestsTotal,
		StorageRequestDuration,
		StorageRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveStorageRequest записывает длительность и статус запроса к хранилищу.
func ObserveStorageRequest(operation, target string, start time.Time, err error) {
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	StorageRequestDuration.WithLabelValues(operation, target, status).Observe(duration)
	StorageRequestTotal.WithLabelValues(operation, target, status).Inc()
}

// ObserveAggregation записывает длительность прогона агрегации и число
// исключённых пользователей.
func ObserveAggregation(duration time.Duration, excluded int) {
	AggregationDuration.Observe(duration.Seconds())
	AggregationExcluded.Set(float64(excluded))
}

// IncFortuneGenerated увеличивает счётчик вычисленных результатов.
func IncFortuneGenerated() {
	FortunesGenerated.Inc()
}

// IncFortuneCacheHit увеличивает счётчик попаданий в кэш.
func IncFortuneCacheHit() {
	FortuneCacheHits.Inc()
}

// IncFortuneCacheMiss увеличивает счётчик промахов кэша.
func IncFortuneCacheMiss() {
	FortuneCacheMisses.Inc()
}

// IncFortuneInsertConflict увеличивает счётчик проигранных гонок вставки.
func IncFortuneInsertConflict() {
	FortuneInsertConflicts.Inc()
}

// IncMessagePoolFallback увеличивает счётчик пустого пула сообщений.
func IncMessagePoolFallback() {
	MessagePoolFallbacks.Inc()
}

// IncRankRequest увеличивает счётчик запросов рейтинга для знака.
func IncRankRequest(sign string) {
	if sign == "" {
		sign = "unknown"
	}
	RankRequestsTotal.WithLabelValues(sign).Inc()
}
