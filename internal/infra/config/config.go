package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	// Опорный часовой пояс календарного дня: два запроса внутри одного
	// дня в этом поясе попадают в один и тот же ключ кэша.
	FortuneTZ string `envconfig:"FORTUNE_TZ" default:"UTC"`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	RabbitURL string `envconfig:"RABBITMQ_URL"`

	Luck struct {
		HighThreshold   int `envconfig:"LUCK_HIGH_THRESHOLD" default:"66"`
		MediumThreshold int `envconfig:"LUCK_MEDIUM_THRESHOLD" default:"33"`
	} `envconfig:""`

	Rank struct {
		Metric string `envconfig:"RANK_METRIC" default:"overall"`
	} `envconfig:""`

	Aggregation struct {
		Hour     int    `envconfig:"AGGREGATION_HOUR" default:"0"`
		QueueKey string `envconfig:"AGGREGATE_QUEUE_KEY" default:"aggregate_jobs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Location возвращает опорный часовой пояс.
func (c AppConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.FortuneTZ)
}
