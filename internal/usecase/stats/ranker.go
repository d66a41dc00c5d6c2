package stats

import (
	"context"
	"errors"
	"sort"
	"time"

	"daily-fortune/internal/domain"
)

// Метрики сортировки рейтинга.
const (
	MetricOverall = "overall"
	MetricLottery = "lottery"
)

// ErrNotRanked возвращается, если знак не участвует в рейтинге за дату:
// знак неизвестен либо агрегатов за дату ещё нет.
var ErrNotRanked = errors.New("знак не участвует в рейтинге")

// Ranker строит дневной рейтинг знаков по сохранённым агрегатам.
// Чистое вычисление на чтении: ничего не сохраняет.
type Ranker struct {
	stats  domain.StatsRepo
	metric string
}

// NewRanker создаёт рейтинг по указанной метрике.
func NewRanker(stats domain.StatsRepo, metric string) *Ranker {
	if metric != MetricLottery {
		metric = MetricOverall
	}
	return &Ranker{stats: stats, metric: metric}
}

func (r *Ranker) value(stat domain.ZodiacDailyStat) float64 {
	if r.metric == MetricLottery {
		return stat.AvgLottery
	}
	return stat.AvgOverall
}

// Leaderboard возвращает знаки за дату в порядке убывания метрики.
// Позиции плотные: равные значения делят позицию, пропусков нет.
// Процентиль: 100 * (total - position + 1) / total.
func (r *Ranker) Leaderboard(ctx context.Context, date time.Time) ([]domain.ZodiacRank, error) {
	items, err := r.stats.ListZodiacStats(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		vi, vj := r.value(items[i]), r.value(items[j])
		if vi != vj {
			return vi > vj
		}
		return items[i].Sign < items[j].Sign
	})

	total := len(items)
	board := make([]domain.ZodiacRank, 0, total)
	position := 0
	var prev float64
	for i, stat := range items {
		v := r.value(stat)
		if i == 0 || v != prev {
			position++
			prev = v
		}
		board = append(board, domain.ZodiacRank{
			Sign:       stat.Sign,
			Position:   position,
			TotalSigns: total,
			// Целочисленное деление, дробная часть отбрасывается.
			Percentile: 100 * (total - position + 1) / total,
			AvgOverall: stat.AvgOverall,
			AvgLottery: stat.AvgLottery,
		})
	}
	return board, nil
}

// Rank возвращает позицию знака в дневном рейтинге.
func (r *Ranker) Rank(ctx context.Context, date time.Time, sign string) (domain.ZodiacRank, error) {
	if !domain.IsZodiacSign(sign) {
		return domain.ZodiacRank{}, ErrNotRanked
	}
	board, err := r.Leaderboard(ctx, date)
	if err != nil {
		return domain.ZodiacRank{}, err
	}
	for _, entry := range board {
		if entry.Sign == sign {
			return entry, nil
		}
	}
	return domain.ZodiacRank{}, ErrNotRanked
}
