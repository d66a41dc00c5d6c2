package domain

import (
	"context"
	"time"
)

// FortuneRepo — граница хранения дневных результатов.
type FortuneRepo interface {
	// GetDailyFortune возвращает сохранённый результат для ключа (userID, date).
	GetDailyFortune(ctx context.Context, userID string, date time.Time) (DailyFortune, bool, error)
	// InsertDailyFortune сохраняет результат с защитой от гонки: при конфликте
	// уникального ключа возвращает строку победителя и created=false.
	InsertDailyFortune(ctx context.Context, fortune DailyFortune) (DailyFortune, bool, error)
	// ListForDate возвращает все результаты за дату вместе с годом рождения пользователя.
	ListForDate(ctx context.Context, date time.Time) ([]ClassifiedFortune, error)
}

// MessageRepo читает пул сообщений. Данные обслуживаются внешней системой,
// движок использует их только на чтение.
type MessageRepo interface {
	ListActiveMessages(ctx context.Context, luckRange, category string) ([]FortuneMessage, error)
}

// StatsRepo — граница хранения дневных агрегатов по знакам.
type StatsRepo interface {
	// UpsertZodiacStat перезаписывает агрегат по ключу (дата, знак).
	UpsertZodiacStat(ctx context.Context, stat ZodiacDailyStat) error
	ListZodiacStats(ctx context.Context, date time.Time) ([]ZodiacDailyStat, error)
}

// UserDirectory — внешний справочник пользователей.
type UserDirectory interface {
	GetProfile(ctx context.Context, userID string) (UserProfile, bool, error)
}

// FortuneService отвечает за выдачу дневного результата.
type FortuneService interface {
	GetOrCompute(ctx context.Context, userID string, date time.Time) (DailyFortune, error)
}

// Cache выдаёт распределённый замок: fn выполняется, только если ключ
// удалось захватить первым.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
}
