package ethereum

import (
	"math/big"
	"strings"
)

// NativeDecimals is the number of implied fractional digits of a native-currency balance (wei per ether)
const NativeDecimals = 18

// FormatBalance renders a fixed-point integer with the given number of implied
// fractional digits as a decimal string, trimming trailing fractional zeros.
// A nil or zero balance renders as "0". Negative decimals are treated as zero.
func FormatBalance(raw *big.Int, decimals int) string {
	if raw == nil || raw.Sign() == 0 {
		return "0"
	}
	if decimals <= 0 {
		return raw.String()
	}

	sign := ""
	value := new(big.Int).Set(raw)
	if value.Sign() < 0 {
		sign = "-"
		value.Abs(value)
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart, frac := new(big.Int).QuoRem(value, denom, new(big.Int))

	if frac.Sign() == 0 {
		return sign + intPart.String()
	}

	fracStr := frac.String()
	if len(fracStr) < decimals {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")

	return sign + intPart.String() + "." + fracStr
}
