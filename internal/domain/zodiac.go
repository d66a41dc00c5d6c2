package domain

import "fmt"

// SignUnknown присваивается пользователям без данных о рождении.
// Такие пользователи не участвуют в агрегации.
const SignUnknown = "unknown"

// 1984 год — крыса (индекс 0).
const zodiacBaseYear = 1984

const (
	zodiacMinYear = 1900
	zodiacMaxYear = 2100
)

var zodiacSigns = [...]string{
	"rat", "ox", "tiger", "rabbit", "dragon", "snake",
	"horse", "goat", "monkey", "rooster", "dog", "pig",
}

// ZodiacSign вычисляет знак двенадцатилетнего цикла по году рождения.
func ZodiacSign(birthYear int) (string, error) {
	if birthYear < zodiacMinYear || birthYear > zodiacMaxYear {
		return "", fmt.Errorf("недопустимый год рождения: %d", birthYear)
	}
	idx := ((birthYear-zodiacBaseYear)%12 + 12) % 12
	return zodiacSigns[idx], nil
}

// AllZodiacSigns возвращает все знаки цикла в каноническом порядке.
func AllZodiacSigns() []string {
	out := make([]string, len(zodiacSigns))
	copy(out, zodiacSigns[:])
	return out
}

// IsZodiacSign сообщает, является ли строка известным знаком.
func IsZodiacSign(sign string) bool {
	for _, s := range zodiacSigns {
		if s == sign {
			return true
		}
	}
	return false
}
