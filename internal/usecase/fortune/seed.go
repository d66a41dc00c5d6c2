package fortune

import (
	"crypto/sha256"
	"encoding/binary"
	"time"
)

const dateLayout = "2006-01-02"

// Назначения потоков. Разные назначения дают независимые последовательности
// из одного ключа (пользователь, дата).
const (
	purposeScores    = "scores"
	purposeNumbers   = "numbers"
	purposeColor     = "color"
	purposeDirection = "direction"
	purposeMessage   = "message"
)

// Stream — детерминированный поток байтов, выведенный из ключа
// (пользователь, календарная дата, назначение). Один и тот же ключ
// всегда даёт одну и ту же последовательность; криптографическая
// непредсказуемость не требуется и не гарантируется.
type Stream struct {
	key     [sha256.Size]byte
	block   [sha256.Size]byte
	counter uint64
	offset  int
}

// NewStream создаёт поток. Дата усечена до календарного дня:
// компонент времени на результат не влияет.
func NewStream(userID string, date time.Time, purpose string) *Stream {
	seed := userID + "|" + date.Format(dateLayout) + "|" + purpose
	s := &Stream{key: sha256.Sum256([]byte(seed))}
	s.refill()
	return s
}

func (s *Stream) refill() {
	var buf [sha256.Size + 8]byte
	copy(buf[:sha256.Size], s.key[:])
	binary.BigEndian.PutUint64(buf[sha256.Size:], s.counter)
	s.block = sha256.Sum256(buf[:])
	s.counter++
	s.offset = 0
}

// Uint64 возвращает следующие восемь байт потока как число.
func (s *Stream) Uint64() uint64 {
	if s.offset+8 > len(s.block) {
		s.refill()
	}
	v := binary.BigEndian.Uint64(s.block[s.offset : s.offset+8])
	s.offset += 8
	return v
}

// IntN возвращает число в [0, n). Смещение от редукции по модулю
// не превышает n/2^64 и для диапазонов движка незначимо.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		panic("fortune: IntN требует положительный диапазон")
	}
	return int(s.Uint64() % uint64(n))
}
