package domain

import "time"

// DailyFortune хранит результат генерации для пары (пользователь, дата).
// Строка создаётся один раз и больше не изменяется.
type DailyFortune struct {
	ID             int64
	UserID         string
	Date           time.Time
	OverallLuck    int
	WealthLuck     int
	LotteryLuck    int
	LuckyNumbers   []int
	LuckyColor     string
	LuckyDirection string
	Message        string
	Advice         string
	CreatedAt      time.Time
}

// FortuneMessage — запись пула сообщений для диапазона удачи и категории.
type FortuneMessage struct {
	ID        int64
	LuckRange string
	Category  string
	Message   string
	IsActive  bool
	CreatedAt time.Time
}

// ZodiacDailyStat — агрегат по знаку зодиака за один день.
type ZodiacDailyStat struct {
	StatsDate     time.Time
	Sign          string
	AvgOverall    float64
	AvgLottery    float64
	ActiveUsers   int
	FortunesCount int
	UpdatedAt     time.Time
}

// UserProfile — данные пользователя из внешнего справочника.
type UserProfile struct {
	ID             string
	BirthYear      int
	FortuneEnabled bool
}

// ClassifiedFortune — результат генерации вместе с годом рождения пользователя.
// BirthYear равен нулю, если данных о рождении нет.
type ClassifiedFortune struct {
	Fortune   DailyFortune
	BirthYear int
}

// ZodiacRank — позиция знака в дневном рейтинге.
type ZodiacRank struct {
	Sign       string
	Position   int
	TotalSigns int
	Percentile int
	AvgOverall float64
	AvgLottery float64
}

// AggregateResult — итог одного прогона агрегации.
type AggregateResult struct {
	Stats    []ZodiacDailyStat
	Excluded int
}
