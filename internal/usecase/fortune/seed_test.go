package fortune

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStreamDeterministic(t *testing.T) {
	a := NewStream("u1", date(2025, 6, 1), "scores")
	b := NewStream("u1", date(2025, 6, 1), "scores")
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("потоки с одинаковым ключом разошлись на шаге %d", i)
		}
	}
}

func TestStreamIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2025, 6, 1, 8, 15, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)
	a := NewStream("u1", morning, "scores")
	b := NewStream("u1", evening, "scores")
	if a.Uint64() != b.Uint64() {
		t.Fatalf("время суток не должно влиять на поток")
	}
}

func TestStreamPurposeIndependence(t *testing.T) {
	a := NewStream("u1", date(2025, 6, 1), "scores")
	b := NewStream("u1", date(2025, 6, 1), "numbers")
	same := 0
	for i := 0; i < 16; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 16 {
		t.Fatalf("разные назначения дали одинаковые потоки")
	}
}

func TestStreamDifferentDates(t *testing.T) {
	a := NewStream("u1", date(2025, 6, 1), "numbers")
	b := NewStream("u1", date(2025, 6, 2), "numbers")
	same := 0
	for i := 0; i < 4; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 4 {
		t.Fatalf("разные даты дали одинаковый поток")
	}
}

func TestStreamDifferentUsers(t *testing.T) {
	a := NewStream("u1", date(2025, 6, 1), "scores")
	b := NewStream("u2", date(2025, 6, 1), "scores")
	same := 0
	for i := 0; i < 4; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 4 {
		t.Fatalf("разные пользователи получили одинаковый поток")
	}
}

func TestIntNRange(t *testing.T) {
	s := NewStream("u1", date(2025, 6, 1), "scores")
	for i := 0; i < 1000; i++ {
		v := s.IntN(45)
		if v < 0 || v >= 45 {
			t.Fatalf("IntN(45) вернул %d", v)
		}
	}
}
