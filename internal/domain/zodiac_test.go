package domain

import "testing"

func TestZodiacSignBaseYear(t *testing.T) {
	sign, err := ZodiacSign(1984)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if sign != "rat" {
		t.Fatalf("1984 год — крыса, получили %q", sign)
	}
}

func TestZodiacSignCycle(t *testing.T) {
	cases := map[int]string{
		1988: "dragon",
		1996: "rat",
		2000: "dragon",
		1983: "pig",
		1975: "rabbit",
	}
	for year, want := range cases {
		sign, err := ZodiacSign(year)
		if err != nil {
			t.Fatalf("год %d: не ожидали ошибку: %v", year, err)
		}
		if sign != want {
			t.Fatalf("год %d: ожидали %q, получили %q", year, want, sign)
		}
	}
}

func TestZodiacSignInvalidYear(t *testing.T) {
	for _, year := range []int{0, 1899, 2101, -5} {
		if _, err := ZodiacSign(year); err == nil {
			t.Fatalf("ожидали ошибку для года %d", year)
		}
	}
}

func TestAllZodiacSignsDistinct(t *testing.T) {
	signs := AllZodiacSigns()
	if len(signs) != 12 {
		t.Fatalf("ожидали 12 знаков, получили %d", len(signs))
	}
	seen := make(map[string]struct{})
	for _, sign := range signs {
		if _, ok := seen[sign]; ok {
			t.Fatalf("знак %q повторяется", sign)
		}
		seen[sign] = struct{}{}
		if !IsZodiacSign(sign) {
			t.Fatalf("IsZodiacSign не признаёт %q", sign)
		}
	}
	if IsZodiacSign(SignUnknown) {
		t.Fatalf("unknown не должен считаться знаком")
	}
}
