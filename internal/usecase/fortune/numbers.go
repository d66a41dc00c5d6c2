package fortune

import (
	"errors"
	"sort"
)

// ErrDrawRange возвращается, если запрошено больше чисел, чем умещается в диапазоне.
var ErrDrawRange = errors.New("количество номеров превышает размер диапазона")

// DrawNumbers выбирает count различных чисел в [rangeMin, rangeMax],
// отсортированных по возрастанию. При повторном выпадении числа
// расходуется следующий срез потока, энтропия не переиспользуется.
func DrawNumbers(stream *Stream, count, rangeMin, rangeMax int) ([]int, error) {
	span := rangeMax - rangeMin + 1
	if count <= 0 || span < count {
		return nil, ErrDrawRange
	}
	seen := make(map[int]struct{}, count)
	nums := make([]int, 0, count)
	for len(nums) < count {
		n := rangeMin + stream.IntN(span)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums, nil
}
