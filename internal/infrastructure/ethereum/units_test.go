package ethereum

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals int
		expected string
	}{
		{"zero", "0", 18, "0"},
		{"one wei", "1", 18, "0.000000000000000001"},
		{"one and a half ether", "1500000000000000000", 18, "1.5"},
		{"exactly one ether", "1000000000000000000", 18, "1"},
		{"large balance", "123456789012345678901234567890", 18, "123456789012.34567890123456789"},
		{"six decimals", "1000000", 6, "1"},
		{"six decimals fractional", "1234567", 6, "1.234567"},
		{"no decimals", "42", 0, "42"},
		{"negative decimals treated as zero", "42", -3, "42"},
		{"trailing zeros trimmed", "100000000000000000", 18, "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := new(big.Int).SetString(tt.raw, 10)
			if !ok {
				t.Fatalf("bad test input %q", tt.raw)
			}

			if got := FormatBalance(raw, tt.decimals); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatBalance_Nil(t *testing.T) {
	if got := FormatBalance(nil, NativeDecimals); got != "0" {
		t.Errorf("expected 0 for nil balance, got %q", got)
	}
}

func TestFormatBalance_DoesNotMutateInput(t *testing.T) {
	raw := big.NewInt(1500)
	FormatBalance(raw, 3)

	if raw.Int64() != 1500 {
		t.Errorf("input was modified: %s", raw)
	}
}

func TestFormatBalance_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)

	for i := 0; i < 500; i++ {
		raw := new(big.Int).Rand(rng, limit)
		decimals := rng.Intn(31)

		out := FormatBalance(raw, decimals)

		parsed, err := decimal.NewFromString(out)
		if err != nil {
			t.Fatalf("output %q for raw %s is not a decimal: %v", out, raw, err)
		}

		recovered := parsed.Shift(int32(decimals)).BigInt()
		if recovered.Cmp(raw) != 0 {
			t.Fatalf("round trip failed: raw %s decimals %d formatted %q recovered %s", raw, decimals, out, recovered)
		}
	}
}
