package fortune

const (
	scoreMin = 1
	scoreMax = 100
)

// Scores — три оценки дня.
type Scores struct {
	Overall int
	Wealth  int
	Lottery int
}

// GenerateScores выводит три оценки из непересекающихся срезов потока,
// каждая в [1,100]. Повторный вызов на том же потоке даёт тот же результат.
func GenerateScores(stream *Stream) Scores {
	span := scoreMax - scoreMin + 1
	return Scores{
		Overall: scoreMin + stream.IntN(span),
		Wealth:  scoreMin + stream.IntN(span),
		Lottery: scoreMin + stream.IntN(span),
	}
}
