package bond

import "math/big"

var (
	basisPoints = big.NewInt(10_000)
	oneE18      = mustBigInt("1000000000000000000")
)

func mustBigInt(value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("invalid big integer constant")
	}
	return v
}

// precisionScalar returns 10^(18-decimals), the multiplier that lifts a raw
// token amount to 18-decimal fixed point. Tokens with more than 18 decimals
// are not supported.
func precisionScalar(decimals uint8) *big.Int {
	if decimals >= 18 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-decimals)), nil)
}

// normalize lifts amount to 18-decimal precision.
func normalize(amount *big.Int, decimals uint8) *big.Int {
	return new(big.Int).Mul(amount, precisionScalar(decimals))
}

// usdValue prices a raw token amount in 18-decimal USD. price is USD wei per
// whole token.
func usdValue(amount *big.Int, decimals uint8, price *big.Int) *big.Int {
	value := new(big.Int).Mul(normalize(amount, decimals), price)
	return value.Quo(value, oneE18)
}

func floorDiv(numerator, denominator *big.Int) *big.Int {
	return new(big.Int).Quo(numerator, denominator)
}

func ceilDiv(numerator, denominator *big.Int) *big.Int {
	out, rem := new(big.Int).QuoRem(numerator, denominator, new(big.Int))
	if rem.Sign() != 0 {
		out.Add(out, big.NewInt(1))
	}
	return out
}
