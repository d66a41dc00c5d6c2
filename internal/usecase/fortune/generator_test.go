package fortune

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateScoresBounds(t *testing.T) {
	for d := 1; d <= 28; d++ {
		scores := GenerateScores(NewStream("u1", date(2025, 6, d), "scores"))
		for _, v := range []int{scores.Overall, scores.Wealth, scores.Lottery} {
			if v < 1 || v > 100 {
				t.Fatalf("оценка %d вне диапазона [1,100]", v)
			}
		}
	}
}

func TestGenerateScoresDeterministic(t *testing.T) {
	a := GenerateScores(NewStream("u1", date(2025, 6, 1), "scores"))
	b := GenerateScores(NewStream("u1", date(2025, 6, 1), "scores"))
	if a != b {
		t.Fatalf("повторный вызов дал другие оценки: %+v и %+v", a, b)
	}
}

func TestDrawNumbersBoundsAndUnique(t *testing.T) {
	for d := 1; d <= 28; d++ {
		nums, err := DrawNumbers(NewStream("u1", date(2025, 6, d), "numbers"), 7, 1, 45)
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if len(nums) != 7 {
			t.Fatalf("ожидали 7 номеров, получили %d", len(nums))
		}
		seen := make(map[int]struct{})
		for i, n := range nums {
			if n < 1 || n > 45 {
				t.Fatalf("номер %d вне диапазона [1,45]", n)
			}
			if _, ok := seen[n]; ok {
				t.Fatalf("номер %d повторяется", n)
			}
			seen[n] = struct{}{}
			if i > 0 && nums[i-1] >= n {
				t.Fatalf("номера не отсортированы: %v", nums)
			}
		}
	}
}

func TestDrawNumbersDeterministic(t *testing.T) {
	a, _ := DrawNumbers(NewStream("u1", date(2025, 6, 1), "numbers"), 7, 1, 45)
	b, _ := DrawNumbers(NewStream("u1", date(2025, 6, 1), "numbers"), 7, 1, 45)
	if len(a) != len(b) {
		t.Fatalf("длины различаются")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("повторный вызов дал другие номера: %v и %v", a, b)
		}
	}
}

func TestDrawNumbersDifferentDates(t *testing.T) {
	a, _ := DrawNumbers(NewStream("u1", date(2025, 6, 1), "numbers"), 7, 1, 45)
	b, _ := DrawNumbers(NewStream("u1", date(2025, 6, 2), "numbers"), 7, 1, 45)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("разные даты дали одинаковые номера: %v", a)
	}
}

func TestDrawNumbersFullRange(t *testing.T) {
	nums, err := DrawNumbers(NewStream("u1", date(2025, 6, 1), "numbers"), 10, 1, 10)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	for i, n := range nums {
		if n != i+1 {
			t.Fatalf("ожидали полный диапазон 1..10, получили %v", nums)
		}
	}
}

func TestDrawNumbersRangeTooSmall(t *testing.T) {
	if _, err := DrawNumbers(NewStream("u1", date(2025, 6, 1), "numbers"), 8, 1, 7); !errors.Is(err, ErrDrawRange) {
		t.Fatalf("ожидали ErrDrawRange, получили %v", err)
	}
	if _, err := DrawNumbers(NewStream("u1", date(2025, 6, 1), "numbers"), 0, 1, 45); !errors.Is(err, ErrDrawRange) {
		t.Fatalf("ожидали ErrDrawRange для count=0, получили %v", err)
	}
}

func TestBucketFor(t *testing.T) {
	b := Buckets{High: 66, Medium: 33}
	cases := []struct {
		score int
		want  string
	}{
		{100, LuckHigh}, {66, LuckHigh}, {65, LuckMedium}, {33, LuckMedium}, {32, LuckLow}, {1, LuckLow},
	}
	for _, c := range cases {
		if got := b.BucketFor(c.score); got != c.want {
			t.Fatalf("оценка %d: ожидали %q, получили %q", c.score, c.want, got)
		}
	}
}

func TestDefaultMessageFallback(t *testing.T) {
	if msg := DefaultMessage(LuckHigh, CategoryGeneral); msg == "" {
		t.Fatalf("ожидали сообщение по умолчанию")
	}
	if msg := DefaultMessage("nonsense", "nonsense"); msg != fallbackMessage {
		t.Fatalf("для неизвестного диапазона ожидали общий фолбэк, получили %q", msg)
	}
}

func TestPickColorAndDirectionStable(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if PickColor(NewStream("u1", day, "color")) != PickColor(NewStream("u1", day, "color")) {
		t.Fatalf("цвет дня должен быть стабильным")
	}
	if PickDirection(NewStream("u1", day, "direction")) != PickDirection(NewStream("u1", day, "direction")) {
		t.Fatalf("направление дня должно быть стабильным")
	}
}
