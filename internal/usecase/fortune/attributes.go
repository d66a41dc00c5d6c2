package fortune

import "daily-fortune/internal/domain"

// Диапазоны удачи.
const (
	LuckHigh   = "high"
	LuckMedium = "medium"
	LuckLow    = "low"
)

// Категории сообщений пула.
const (
	CategoryGeneral = "general"
	CategoryTiming  = "timing"
)

// Buckets — пороги диапазонов удачи. Точные значения задаются конфигурацией.
type Buckets struct {
	High   int
	Medium int
}

// DefaultBuckets — пороги по умолчанию.
var DefaultBuckets = Buckets{High: 66, Medium: 33}

// BucketFor относит оценку к диапазону удачи.
func (b Buckets) BucketFor(score int) string {
	switch {
	case score >= b.High:
		return LuckHigh
	case score >= b.Medium:
		return LuckMedium
	default:
		return LuckLow
	}
}

var luckyColors = []string{
	"красный", "оранжевый", "жёлтый", "зелёный", "синий", "индиго",
	"фиолетовый", "розовый", "белый", "чёрный", "золотой", "серебряный",
}

var luckyDirections = []string{
	"восток", "запад", "юг", "север",
	"юго-восток", "юго-запад", "северо-восток", "северо-запад",
}

// PickColor выбирает цвет дня.
func PickColor(stream *Stream) string {
	return luckyColors[stream.IntN(len(luckyColors))]
}

// PickDirection выбирает направление дня.
func PickDirection(stream *Stream) string {
	return luckyDirections[stream.IntN(len(luckyDirections))]
}

// SelectMessage детерминированно выбирает сообщение из непустого пула.
func SelectMessage(stream *Stream, messages []domain.FortuneMessage) string {
	return messages[stream.IntN(len(messages))].Message
}

var defaultMessages = map[string]map[string]string{
	LuckHigh: {
		CategoryGeneral: "Сегодня удача особенно на вашей стороне!",
		CategoryTiming:  "Утренние часы особенно удачны — важные дела планируйте на утро.",
	},
	LuckMedium: {
		CategoryGeneral: "День обещает быть ровным и стабильным.",
		CategoryTiming:  "Хорошие возможности ждут во второй половине дня.",
	},
	LuckLow: {
		CategoryGeneral: "Сегодня стоит действовать осмотрительнее.",
		CategoryTiming:  "Не торопитесь, продвигайтесь шаг за шагом.",
	},
}

const fallbackMessage = "Удачи вам сегодня!"

// DefaultMessage возвращает сообщение по умолчанию, когда пул пуст.
func DefaultMessage(luckRange, category string) string {
	if byCategory, ok := defaultMessages[luckRange]; ok {
		if msg, ok := byCategory[category]; ok {
			return msg
		}
	}
	return fallbackMessage
}
