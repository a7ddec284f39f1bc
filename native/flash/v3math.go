package flash

import (
	"math/big"

	"github.com/holiman/uint256"
)

var (
	q96        = new(big.Int).Lsh(big.NewInt(1), 96)
	pipsPerOne = big.NewInt(1_000_000)
)

// V3FlashFee returns the fee owed on a flash loan of amount at the pool's fee
// tier (hundredths of a basis point). Rounds up.
func V3FlashFee(amount *big.Int, feePips uint32) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(feePips)))
	fee, rem := fee.QuoRem(fee, pipsPerOne, new(big.Int))
	if rem.Sign() != 0 {
		fee.Add(fee, one)
	}
	return fee, nil
}

// checkUint256 enforces the EVM word-size bound on a value entering or
// leaving the sqrt-price math.
func checkUint256(v *big.Int) error {
	if _, overflow := uint256.FromBig(v); overflow {
		return errPriceOverflow
	}
	return nil
}

func validateV3State(sqrtPriceX96, liquidity *big.Int) error {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return errPriceOverflow
	}
	if err := checkUint256(sqrtPriceX96); err != nil {
		return err
	}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return errZeroLiquidity
	}
	if _, overflow := uint256.FromBig(liquidity); overflow {
		return errZeroLiquidity
	}
	return nil
}

// V3AmountOut quotes a fee-inclusive swap against the pool's current sqrt
// price and in-range liquidity, assuming the trade settles within the tick.
// zeroForOne sells token0 for token1. Rounds down: the quote bounds what the
// adapter may claim.
func V3AmountOut(amountIn, sqrtPriceX96, liquidity *big.Int, feePips uint32, zeroForOne bool) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if err := validateV3State(sqrtPriceX96, liquidity); err != nil {
		return nil, err
	}
	netIn := new(big.Int).Mul(amountIn, new(big.Int).Sub(pipsPerOne, new(big.Int).SetUint64(uint64(feePips))))
	netIn.Quo(netIn, pipsPerOne)
	if netIn.Sign() == 0 {
		return big.NewInt(0), nil
	}

	liquidityX96 := new(big.Int).Mul(liquidity, q96)
	if zeroForOne {
		// sqrtP' = ceil(L·Q96·sqrtP / (L·Q96 + dx·sqrtP)); rounding the new
		// price up keeps the token1 output conservative.
		denominator := new(big.Int).Mul(netIn, sqrtPriceX96)
		denominator.Add(denominator, liquidityX96)
		nextPrice := ceilBig(new(big.Int).Mul(liquidityX96, sqrtPriceX96), denominator)
		amountOut := new(big.Int).Sub(sqrtPriceX96, nextPrice)
		amountOut.Mul(amountOut, liquidity)
		amountOut.Quo(amountOut, q96)
		if err := checkUint256(amountOut); err != nil {
			return nil, err
		}
		return amountOut, nil
	}
	// sqrtP' = sqrtP + dy·Q96/L; token0 out = L·Q96·(sqrtP'−sqrtP)/(sqrtP'·sqrtP).
	priceDelta := new(big.Int).Mul(netIn, q96)
	priceDelta.Quo(priceDelta, liquidity)
	nextPrice := new(big.Int).Add(sqrtPriceX96, priceDelta)
	if err := checkUint256(nextPrice); err != nil {
		return nil, err
	}
	amountOut := new(big.Int).Mul(liquidityX96, priceDelta)
	amountOut.Quo(amountOut, new(big.Int).Mul(nextPrice, sqrtPriceX96))
	if err := checkUint256(amountOut); err != nil {
		return nil, err
	}
	return amountOut, nil
}

// V3AmountIn is the exact-output inverse of V3AmountOut: the fee-inclusive
// input required to withdraw amountOut within the current tick. Rounds up in
// the adapter's disfavor at every step.
func V3AmountIn(amountOut, sqrtPriceX96, liquidity *big.Int, feePips uint32, zeroForOne bool) (*big.Int, error) {
	if amountOut == nil || amountOut.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if err := validateV3State(sqrtPriceX96, liquidity); err != nil {
		return nil, err
	}
	liquidityX96 := new(big.Int).Mul(liquidity, q96)
	var grossIn *big.Int
	if zeroForOne {
		// Withdrawing token1 moves the price down: sqrtP' = sqrtP − ceil(dy·Q96/L).
		priceDelta := ceilBig(new(big.Int).Mul(amountOut, q96), liquidity)
		nextPrice := new(big.Int).Sub(sqrtPriceX96, priceDelta)
		if nextPrice.Sign() <= 0 {
			return nil, errZeroLiquidity
		}
		numerator := new(big.Int).Mul(liquidityX96, new(big.Int).Sub(sqrtPriceX96, nextPrice))
		grossIn = ceilBig(numerator, new(big.Int).Mul(nextPrice, sqrtPriceX96))
	} else {
		// Withdrawing token0: sqrtP' = ceil(L·Q96·sqrtP / (L·Q96 − dx·sqrtP)).
		denominator := new(big.Int).Sub(liquidityX96, new(big.Int).Mul(amountOut, sqrtPriceX96))
		if denominator.Sign() <= 0 {
			return nil, errZeroLiquidity
		}
		nextPrice := ceilBig(new(big.Int).Mul(liquidityX96, sqrtPriceX96), denominator)
		if err := checkUint256(nextPrice); err != nil {
			return nil, err
		}
		grossIn = ceilBig(new(big.Int).Mul(liquidity, new(big.Int).Sub(nextPrice, sqrtPriceX96)), q96)
	}
	amountIn := ceilBig(new(big.Int).Mul(grossIn, pipsPerOne), new(big.Int).Sub(pipsPerOne, new(big.Int).SetUint64(uint64(feePips))))
	if err := checkUint256(amountIn); err != nil {
		return nil, err
	}
	return amountIn, nil
}

func ceilBig(numerator, denominator *big.Int) *big.Int {
	out, rem := new(big.Int).QuoRem(numerator, denominator, new(big.Int))
	if rem.Sign() != 0 {
		out.Add(out, one)
	}
	return out
}
