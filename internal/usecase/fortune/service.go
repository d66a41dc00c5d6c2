package fortune

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"daily-fortune/internal/domain"
	"daily-fortune/internal/infra/metrics"
)

// ErrInvalidUserID возвращается при некорректном идентификаторе пользователя.
var ErrInvalidUserID = errors.New("некорректный идентификатор пользователя")

// ErrInvalidDate возвращается при пустой дате запроса.
var ErrInvalidDate = errors.New("некорректная дата")

// ErrFortuneDisabled возвращается, если функция отключена для пользователя.
var ErrFortuneDisabled = errors.New("гороскоп недоступен для пользователя")

const (
	luckyNumbersCount = 7
	luckyNumberMin    = 1
	luckyNumberMax    = 45
)

// Service реализует выдачу дневного результата с кэшированием в хранилище.
// Правильность при конкурентных вызовах опирается на уникальный ключ
// (user_id, fortune_date) в хранилище, а не на блокировки процесса:
// экземпляров сервиса может быть несколько.
type Service struct {
	fortunes domain.FortuneRepo
	messages domain.MessageRepo
	users    domain.UserDirectory
	buckets  Buckets
	loc      *time.Location
	logger   zerolog.Logger
}

var _ domain.FortuneService = (*Service)(nil)

// NewService создаёт сервис. users может быть nil, тогда проверка доступности
// функции пропускается. loc — опорный часовой пояс календарного дня.
func NewService(fortunes domain.FortuneRepo, messages domain.MessageRepo, users domain.UserDirectory, buckets Buckets, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if buckets.High == 0 && buckets.Medium == 0 {
		buckets = DefaultBuckets
	}
	return &Service{fortunes: fortunes, messages: messages, users: users, buckets: buckets, loc: loc, logger: logger}
}

// Day приводит момент времени к календарной дате в опорном часовом поясе.
// Любые два момента внутри одного дня дают один и тот же ключ кэша.
func (s *Service) Day(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetOrCompute возвращает сохранённый результат или вычисляет и сохраняет новый.
// Повторные запросы за тот же день возвращают ту же строку без перегенерации.
func (s *Service) GetOrCompute(ctx context.Context, userID string, date time.Time) (domain.DailyFortune, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.DailyFortune{}, ErrInvalidUserID
	}
	if date.IsZero() {
		return domain.DailyFortune{}, ErrInvalidDate
	}
	day := s.Day(date)

	if s.users != nil {
		profile, found, err := s.users.GetProfile(ctx, userID)
		if err != nil {
			return domain.DailyFortune{}, fmt.Errorf("профиль пользователя: %w", err)
		}
		if found && !profile.FortuneEnabled {
			return domain.DailyFortune{}, ErrFortuneDisabled
		}
	}

	existing, found, err := s.fortunes.GetDailyFortune(ctx, userID, day)
	if err != nil {
		return domain.DailyFortune{}, fmt.Errorf("чтение результата: %w", err)
	}
	if found {
		metrics.IncFortuneCacheHit()
		return existing, nil
	}
	metrics.IncFortuneCacheMiss()

	computed, err := s.compute(ctx, userID, day)
	if err != nil {
		return domain.DailyFortune{}, err
	}

	stored, created, err := s.fortunes.InsertDailyFortune(ctx, computed)
	if err != nil {
		return domain.DailyFortune{}, fmt.Errorf("сохранение результата: %w", err)
	}
	if created {
		metrics.IncFortuneGenerated()
	} else {
		// Гонку выиграл другой вызов — возвращаем его строку.
		metrics.IncFortuneInsertConflict()
	}
	return stored, nil
}

func (s *Service) compute(ctx context.Context, userID string, day time.Time) (domain.DailyFortune, error) {
	scores := GenerateScores(NewStream(userID, day, purposeScores))
	numbers, err := DrawNumbers(NewStream(userID, day, purposeNumbers), luckyNumbersCount, luckyNumberMin, luckyNumberMax)
	if err != nil {
		return domain.DailyFortune{}, fmt.Errorf("выбор номеров: %w", err)
	}

	bucket := s.buckets.BucketFor(scores.Lottery)
	msgStream := NewStream(userID, day, purposeMessage)
	message := s.poolMessage(ctx, msgStream, bucket, CategoryGeneral)
	advice := s.poolMessage(ctx, msgStream, bucket, CategoryTiming)

	return domain.DailyFortune{
		UserID:         userID,
		Date:           day,
		OverallLuck:    scores.Overall,
		WealthLuck:     scores.Wealth,
		LotteryLuck:    scores.Lottery,
		LuckyNumbers:   numbers,
		LuckyColor:     PickColor(NewStream(userID, day, purposeColor)),
		LuckyDirection: PickDirection(NewStream(userID, day, purposeDirection)),
		Message:        message,
		Advice:         advice,
	}, nil
}

// poolMessage выбирает активное сообщение пула; при пустом пуле или ошибке
// чтения генерация не прерывается, используется сообщение по умолчанию.
func (s *Service) poolMessage(ctx context.Context, stream *Stream, bucket, category string) string {
	if s.messages == nil {
		return DefaultMessage(bucket, category)
	}
	msgs, err := s.messages.ListActiveMessages(ctx, bucket, category)
	if err != nil {
		s.logger.Warn().Err(err).Str("luck_range", bucket).Str("category", category).
			Msg("пул сообщений недоступен, используется сообщение по умолчанию")
		metrics.IncMessagePoolFallback()
		return DefaultMessage(bucket, category)
	}
	if len(msgs) == 0 {
		s.logger.Warn().Str("luck_range", bucket).Str("category", category).
			Msg("в пуле нет активных сообщений")
		metrics.IncMessagePoolFallback()
		return DefaultMessage(bucket, category)
	}
	return SelectMessage(stream, msgs)
}
