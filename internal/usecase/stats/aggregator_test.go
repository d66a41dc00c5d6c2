package stats

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"daily-fortune/internal/domain"
)

type stubFortunes struct {
	rows []domain.ClassifiedFortune
}

func (s *stubFortunes) GetDailyFortune(context.Context, string, time.Time) (domain.DailyFortune, bool, error) {
	return domain.DailyFortune{}, false, nil
}

func (s *stubFortunes) InsertDailyFortune(_ context.Context, f domain.DailyFortune) (domain.DailyFortune, bool, error) {
	return f, true, nil
}

func (s *stubFortunes) ListForDate(context.Context, time.Time) ([]domain.ClassifiedFortune, error) {
	return s.rows, nil
}

type memStats struct {
	byKey   map[string]domain.ZodiacDailyStat
	upserts int
}

func newMemStats() *memStats {
	return &memStats{byKey: make(map[string]domain.ZodiacDailyStat)}
}

func (m *memStats) UpsertZodiacStat(_ context.Context, stat domain.ZodiacDailyStat) error {
	m.upserts++
	m.byKey[stat.StatsDate.Format("2006-01-02")+"|"+stat.Sign] = stat
	return nil
}

func (m *memStats) ListZodiacStats(_ context.Context, date time.Time) ([]domain.ZodiacDailyStat, error) {
	var out []domain.ZodiacDailyStat
	for _, stat := range m.byKey {
		if stat.StatsDate.Equal(date) {
			out = append(out, stat)
		}
	}
	return out, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 1988 и 2000 — дракон, 1996 — крыса.
func classified(userID string, birthYear, overall, lottery int) domain.ClassifiedFortune {
	return domain.ClassifiedFortune{
		Fortune:   domain.DailyFortune{UserID: userID, OverallLuck: overall, LotteryLuck: lottery},
		BirthYear: birthYear,
	}
}

func TestAggregateAverages(t *testing.T) {
	fortunes := &stubFortunes{rows: []domain.ClassifiedFortune{
		classified("u1", 1988, 80, 70),
		classified("u2", 2000, 60, 50),
		classified("u3", 1988, 40, 30),
	}}
	statsRepo := newMemStats()
	aggregator := NewAggregator(fortunes, statsRepo, zerolog.Nop())

	result, err := aggregator.Aggregate(context.Background(), date(2025, 6, 1))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(result.Stats) != 1 {
		t.Fatalf("ожидали один знак, получили %d", len(result.Stats))
	}
	stat := result.Stats[0]
	if stat.Sign != "dragon" {
		t.Fatalf("ожидали dragon, получили %q", stat.Sign)
	}
	if stat.AvgOverall != 60.0 {
		t.Fatalf("ожидали среднюю оценку 60.0, получили %v", stat.AvgOverall)
	}
	if stat.AvgLottery != 50.0 {
		t.Fatalf("ожидали среднюю лотерейную оценку 50.0, получили %v", stat.AvgLottery)
	}
	if stat.ActiveUsers != 3 || stat.FortunesCount != 3 {
		t.Fatalf("ожидали 3 пользователя и 3 строки, получили %d и %d", stat.ActiveUsers, stat.FortunesCount)
	}
}

func TestAggregateGroupsBySign(t *testing.T) {
	fortunes := &stubFortunes{rows: []domain.ClassifiedFortune{
		classified("u1", 1988, 90, 90),
		classified("u2", 1996, 50, 50),
		classified("u3", 1996, 70, 70),
	}}
	statsRepo := newMemStats()
	aggregator := NewAggregator(fortunes, statsRepo, zerolog.Nop())

	result, err := aggregator.Aggregate(context.Background(), date(2025, 6, 1))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(result.Stats) != 2 {
		t.Fatalf("ожидали два знака, получили %d", len(result.Stats))
	}

	total := 0
	for _, stat := range result.Stats {
		total += stat.ActiveUsers
	}
	if total != 3 {
		t.Fatalf("сумма пользователей по знакам должна равняться числу классифицированных строк, получили %d", total)
	}
}

func TestAggregateExcludesUnclassified(t *testing.T) {
	fortunes := &stubFortunes{rows: []domain.ClassifiedFortune{
		classified("u1", 1988, 80, 80),
		classified("u2", 0, 10, 10),
		classified("u3", 1850, 10, 10),
	}}
	statsRepo := newMemStats()
	aggregator := NewAggregator(fortunes, statsRepo, zerolog.Nop())

	result, err := aggregator.Aggregate(context.Background(), date(2025, 6, 1))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if result.Excluded != 2 {
		t.Fatalf("ожидали 2 исключённых, получили %d", result.Excluded)
	}
	if len(result.Stats) != 1 {
		t.Fatalf("неклассифицированные не должны образовывать группу")
	}
	if result.Stats[0].AvgOverall != 80.0 {
		t.Fatalf("исключённые строки не должны влиять на среднее, получили %v", result.Stats[0].AvgOverall)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	fortunes := &stubFortunes{rows: []domain.ClassifiedFortune{
		classified("u1", 1988, 80, 70),
		classified("u2", 1996, 60, 50),
	}}
	statsRepo := newMemStats()
	aggregator := NewAggregator(fortunes, statsRepo, zerolog.Nop())

	first, err := aggregator.Aggregate(context.Background(), date(2025, 6, 1))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	second, err := aggregator.Aggregate(context.Background(), date(2025, 6, 1))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("повторный прогон дал другой результат")
	}
	if len(statsRepo.byKey) != 2 {
		t.Fatalf("повторный прогон не должен добавлять строки, получили %d", len(statsRepo.byKey))
	}
}

func TestAggregateDoesNotTouchOtherDates(t *testing.T) {
	statsRepo := newMemStats()
	other := domain.ZodiacDailyStat{StatsDate: date(2025, 5, 31), Sign: "rat", AvgOverall: 42}
	_ = statsRepo.UpsertZodiacStat(context.Background(), other)

	fortunes := &stubFortunes{rows: []domain.ClassifiedFortune{classified("u1", 1996, 70, 70)}}
	aggregator := NewAggregator(fortunes, statsRepo, zerolog.Nop())
	if _, err := aggregator.Aggregate(context.Background(), date(2025, 6, 1)); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	kept, err := statsRepo.ListZodiacStats(context.Background(), date(2025, 5, 31))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(kept) != 1 || kept[0].AvgOverall != 42 {
		t.Fatalf("агрегация испортила данные другой даты")
	}
}
