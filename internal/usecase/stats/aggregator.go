package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"daily-fortune/internal/domain"
	"daily-fortune/internal/infra/metrics"
)

// Aggregator пересчитывает дневную статистику по знакам зодиака.
type Aggregator struct {
	fortunes domain.FortuneRepo
	stats    domain.StatsRepo
	logger   zerolog.Logger
}

// NewAggregator создаёт агрегатор.
func NewAggregator(fortunes domain.FortuneRepo, stats domain.StatsRepo, logger zerolog.Logger) *Aggregator {
	return &Aggregator{fortunes: fortunes, stats: stats, logger: logger}
}

type signAccum struct {
	sumOverall int
	sumLottery int
	users      map[string]struct{}
	count      int
}

// Aggregate пересчитывает агрегаты за дату и перезаписывает их по ключу
// (дата, знак). Повторный запуск по неизменившимся данным даёт тот же
// результат: значения заменяются целиком, а не добавляются. Пользователи
// без данных о рождении исключаются и учитываются в Excluded.
func (a *Aggregator) Aggregate(ctx context.Context, date time.Time) (domain.AggregateResult, error) {
	start := time.Now()

	rows, err := a.fortunes.ListForDate(ctx, date)
	if err != nil {
		return domain.AggregateResult{}, fmt.Errorf("выборка результатов за %s: %w", date.Format("2006-01-02"), err)
	}

	groups := make(map[string]*signAccum)
	excluded := 0
	for _, row := range rows {
		sign := domain.SignUnknown
		if row.BirthYear != 0 {
			if derived, err := domain.ZodiacSign(row.BirthYear); err == nil {
				sign = derived
			}
		}
		if sign == domain.SignUnknown {
			excluded++
			continue
		}
		acc := groups[sign]
		if acc == nil {
			acc = &signAccum{users: make(map[string]struct{})}
			groups[sign] = acc
		}
		acc.sumOverall += row.Fortune.OverallLuck
		acc.sumLottery += row.Fortune.LotteryLuck
		acc.users[row.Fortune.UserID] = struct{}{}
		acc.count++
	}

	signs := make([]string, 0, len(groups))
	for sign := range groups {
		signs = append(signs, sign)
	}
	sort.Strings(signs)

	result := domain.AggregateResult{Excluded: excluded}
	for _, sign := range signs {
		acc := groups[sign]
		stat := domain.ZodiacDailyStat{
			StatsDate:     date,
			Sign:          sign,
			AvgOverall:    float64(acc.sumOverall) / float64(acc.count),
			AvgLottery:    float64(acc.sumLottery) / float64(acc.count),
			ActiveUsers:   len(acc.users),
			FortunesCount: acc.count,
		}
		if err := a.stats.UpsertZodiacStat(ctx, stat); err != nil {
			return domain.AggregateResult{}, fmt.Errorf("сохранение агрегата %s: %w", sign, err)
		}
		result.Stats = append(result.Stats, stat)
	}

	metrics.ObserveAggregation(time.Since(start), excluded)
	a.logger.Info().
		Str("date", date.Format("2006-01-02")).
		Int("signs", len(result.Stats)).
		Int("excluded", excluded).
		Msg("агрегация завершена")
	return result, nil
}
