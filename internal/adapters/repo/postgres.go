package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"daily-fortune/internal/domain"
	"daily-fortune/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
//
// Ожидаемая схема:
//   daily_fortunes    — уникальный ключ (user_id, fortune_date)
//   zodiac_daily_stats — уникальный ключ (stats_date, zodiac_sign)
//   fortune_messages  — пул сообщений, обслуживается внешней системой
//   users             — внешний справочник, читается только год рождения и флаг
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.FortuneRepo = (*Postgres)(nil)
var _ domain.MessageRepo = (*Postgres)(nil)
var _ domain.StatsRepo = (*Postgres)(nil)
var _ domain.UserDirectory = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return p.connCtx()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

func toInt32Slice(nums []int) []int32 {
	out := make([]int32, len(nums))
	for i, n := range nums {
		out[i] = int32(n)
	}
	return out
}

func toIntSlice(nums []int32) []int {
	out := make([]int, len(nums))
	for i, n := range nums {
		out[i] = int(n)
	}
	return out
}

// GetDailyFortune возвращает сохранённый результат для ключа (userID, date).
func (p *Postgres) GetDailyFortune(ctx context.Context, userID string, date time.Time) (domain.DailyFortune, bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var (
		fortune domain.DailyFortune
		numbers []int32
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, user_id::text, fortune_date, overall_luck, wealth_luck, lottery_luck,
       lucky_numbers, lucky_color, lucky_direction, fortune_message, advice, created_at
FROM daily_fortunes
WHERE user_id = $1::uuid AND fortune_date = $2
`, userID, date).Scan(&fortune.ID, &fortune.UserID, &fortune.Date, &fortune.OverallLuck, &fortune.WealthLuck,
		&fortune.LotteryLuck, &numbers, &fortune.LuckyColor, &fortune.LuckyDirection,
		&fortune.Message, &fortune.Advice, &fortune.CreatedAt)
	metrics.ObserveStorageRequest("daily_fortunes_get", "daily_fortunes", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyFortune{}, false, nil
	}
	if err != nil {
		return domain.DailyFortune{}, false, err
	}
	fortune.LuckyNumbers = toIntSlice(numbers)
	return fortune, true, nil
}

// InsertDailyFortune сохраняет результат с защитой от гонки. Вставка,
// проигравшая конфликт уникального ключа, не считается ошибкой: метод
// перечитывает строку победителя и возвращает created=false.
func (p *Postgres) InsertDailyFortune(ctx context.Context, fortune domain.DailyFortune) (domain.DailyFortune, bool, error) {
	insertCtx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	err := p.pool.QueryRow(insertCtx, `
INSERT INTO daily_fortunes (user_id, fortune_date, overall_luck, wealth_luck, lottery_luck,
                            lucky_numbers, lucky_color, lucky_direction, fortune_message, advice)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, fortune_date) DO NOTHING
RETURNING id, created_at
`, fortune.UserID, fortune.Date, fortune.OverallLuck, fortune.WealthLuck, fortune.LotteryLuck,
		toInt32Slice(fortune.LuckyNumbers), fortune.LuckyColor, fortune.LuckyDirection,
		fortune.Message, fortune.Advice).Scan(&fortune.ID, &fortune.CreatedAt)
	metrics.ObserveStorageRequest("daily_fortunes_insert", "daily_fortunes", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		winner, found, err := p.GetDailyFortune(ctx, fortune.UserID, fortune.Date)
		if err != nil {
			return domain.DailyFortune{}, false, err
		}
		if !found {
			return domain.DailyFortune{}, false, fmt.Errorf("строка для (%s, %s) не найдена после конфликта", fortune.UserID, fortune.Date.Format("2006-01-02"))
		}
		return winner, false, nil
	}
	if err != nil {
		return domain.DailyFortune{}, false, err
	}
	return fortune, true, nil
}

// ListForDate возвращает все результаты за дату вместе с годом рождения.
func (p *Postgres) ListForDate(ctx context.Context, date time.Time) ([]domain.ClassifiedFortune, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT f.id, f.user_id::text, f.fortune_date, f.overall_luck, f.wealth_luck, f.lottery_luck,
       f.lucky_numbers, f.lucky_color, f.lucky_direction, f.fortune_message, f.advice, f.created_at,
       COALESCE(u.birth_year, 0)
FROM daily_fortunes f
LEFT JOIN users u ON u.id = f.user_id
WHERE f.fortune_date = $1
ORDER BY f.id
`, date)
	metrics.ObserveStorageRequest("daily_fortunes_list", "daily_fortunes", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ClassifiedFortune
	for rows.Next() {
		var (
			item    domain.ClassifiedFortune
			numbers []int32
		)
		if err := rows.Scan(&item.Fortune.ID, &item.Fortune.UserID, &item.Fortune.Date,
			&item.Fortune.OverallLuck, &item.Fortune.WealthLuck, &item.Fortune.LotteryLuck,
			&numbers, &item.Fortune.LuckyColor, &item.Fortune.LuckyDirection,
			&item.Fortune.Message, &item.Fortune.Advice, &item.Fortune.CreatedAt, &item.BirthYear); err != nil {
			return nil, err
		}
		item.Fortune.LuckyNumbers = toIntSlice(numbers)
		out = append(out, item)
	}
	return out, rows.Err()
}

// ListActiveMessages возвращает активные сообщения пула для диапазона и категории.
func (p *Postgres) ListActiveMessages(ctx context.Context, luckRange, category string) ([]domain.FortuneMessage, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, luck_range, category, message, is_active, created_at
FROM fortune_messages
WHERE luck_range = $1 AND category = $2 AND is_active
ORDER BY id
`, luckRange, category)
	metrics.ObserveStorageRequest("fortune_messages_list", "fortune_messages", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FortuneMessage
	for rows.Next() {
		var msg domain.FortuneMessage
		if err := rows.Scan(&msg.ID, &msg.LuckRange, &msg.Category, &msg.Message, &msg.IsActive, &msg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// UpsertZodiacStat перезаписывает агрегат по ключу (дата, знак).
func (p *Postgres) UpsertZodiacStat(ctx context.Context, stat domain.ZodiacDailyStat) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO zodiac_daily_stats (stats_date, zodiac_sign, avg_overall_luck, avg_lottery_luck, active_users, fortunes_count, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (stats_date, zodiac_sign) DO UPDATE SET
    avg_overall_luck = EXCLUDED.avg_overall_luck,
    avg_lottery_luck = EXCLUDED.avg_lottery_luck,
    active_users = EXCLUDED.active_users,
    fortunes_count = EXCLUDED.fortunes_count,
    updated_at = now()
`, stat.StatsDate, stat.Sign, stat.AvgOverall, stat.AvgLottery, stat.ActiveUsers, stat.FortunesCount)
	metrics.ObserveStorageRequest("zodiac_daily_stats_upsert", "zodiac_daily_stats", start, err)
	return err
}

// ListZodiacStats возвращает агрегаты за дату.
func (p *Postgres) ListZodiacStats(ctx context.Context, date time.Time) ([]domain.ZodiacDailyStat, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT stats_date, zodiac_sign, avg_overall_luck, avg_lottery_luck, active_users, fortunes_count, updated_at
FROM zodiac_daily_stats
WHERE stats_date = $1
ORDER BY zodiac_sign
`, date)
	metrics.ObserveStorageRequest("zodiac_daily_stats_list", "zodiac_daily_stats", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ZodiacDailyStat
	for rows.Next() {
		var stat domain.ZodiacDailyStat
		if err := rows.Scan(&stat.StatsDate, &stat.Sign, &stat.AvgOverall, &stat.AvgLottery,
			&stat.ActiveUsers, &stat.FortunesCount, &stat.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, stat)
	}
	return out, rows.Err()
}

// GetProfile возвращает профиль пользователя из справочника.
func (p *Postgres) GetProfile(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var profile domain.UserProfile
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id::text, COALESCE(birth_year, 0), fortune_enabled
FROM users
WHERE id = $1::uuid
`, userID).Scan(&profile.ID, &profile.BirthYear, &profile.FortuneEnabled)
	metrics.ObserveStorageRequest("users_get_profile", "users", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, err
	}
	return profile, true, nil
}
