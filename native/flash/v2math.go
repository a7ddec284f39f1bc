package flash

import "math/big"

// Constant-product pools charge a 0.3% proportional fee: amounts sent in only
// count at 997/1000 toward the invariant.
var (
	v2FeeNumerator   = big.NewInt(997)
	v2FeeDenominator = big.NewInt(1000)
	v2FeeDelta       = big.NewInt(3)
	one              = big.NewInt(1)
)

// RepayForBorrowed inverts the constant-product formula inclusive of the swap
// fee: the minimum reserveIn-side amount that must be returned to the pair
// after borrowing borrowedAmount from the reserveOut side. Rounds up, so
// underpaying by one unit can never satisfy the pair's invariant check.
func RepayForBorrowed(borrowedAmount, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if borrowedAmount == nil || borrowedAmount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, errZeroReserves
	}
	if borrowedAmount.Cmp(reserveOut) >= 0 {
		return nil, errExcessiveBorrow
	}
	numerator := new(big.Int).Mul(reserveIn, borrowedAmount)
	numerator.Mul(numerator, v2FeeDenominator)
	denominator := new(big.Int).Sub(reserveOut, borrowedAmount)
	denominator.Mul(denominator, v2FeeNumerator)
	repay := numerator.Quo(numerator, denominator)
	return repay.Add(repay, one), nil
}

// AmountOutForAmountIn quotes the reserveOut-side amount received for sending
// amountIn to the reserveIn side, net of the swap fee. Rounds down: it bounds
// what the adapter may claim, not what it owes.
func AmountOutForAmountIn(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, errZeroReserves
	}
	inWithFee := new(big.Int).Mul(amountIn, v2FeeNumerator)
	numerator := new(big.Int).Mul(inWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, v2FeeDenominator)
	denominator.Add(denominator, inWithFee)
	return numerator.Quo(numerator, denominator), nil
}

// SameAssetRepay returns the amount owed when the borrowed token itself is
// returned to the pair: principal grossed up by the fee, rounded up.
func SameAssetRepay(borrowedAmount *big.Int) (*big.Int, error) {
	if borrowedAmount == nil || borrowedAmount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	repay := new(big.Int).Mul(borrowedAmount, v2FeeDenominator)
	repay.Quo(repay, v2FeeNumerator)
	return repay.Add(repay, one), nil
}

// SatisfiesV2Invariant reports whether returning repay to the reserveIn side
// after taking borrowedAmount from the reserveOut side keeps the pair's
// fee-adjusted constant product from decreasing. The adapter verifies its own
// repay figure against this before settling; it never trusts one supplied by
// a caller.
func SatisfiesV2Invariant(borrowedAmount, repay, reserveIn, reserveOut *big.Int) bool {
	if borrowedAmount == nil || repay == nil || reserveIn == nil || reserveOut == nil {
		return false
	}
	if borrowedAmount.Cmp(reserveOut) >= 0 {
		return false
	}
	balanceInAdj := new(big.Int).Add(reserveIn, repay)
	balanceInAdj.Mul(balanceInAdj, v2FeeDenominator)
	balanceInAdj.Sub(balanceInAdj, new(big.Int).Mul(repay, v2FeeDelta))

	balanceOutAdj := new(big.Int).Sub(reserveOut, borrowedAmount)
	balanceOutAdj.Mul(balanceOutAdj, v2FeeDenominator)

	invariant := new(big.Int).Mul(reserveIn, reserveOut)
	invariant.Mul(invariant, v2FeeDenominator)
	invariant.Mul(invariant, v2FeeDenominator)

	return new(big.Int).Mul(balanceInAdj, balanceOutAdj).Cmp(invariant) >= 0
}

// SatisfiesV2InvariantSameAsset is the same-asset variant: borrowedAmount
// taken and repay returned on one side of the pair.
func SatisfiesV2InvariantSameAsset(borrowedAmount, repay, reserve *big.Int) bool {
	if borrowedAmount == nil || repay == nil || reserve == nil {
		return false
	}
	balance := new(big.Int).Sub(reserve, borrowedAmount)
	balance.Add(balance, repay)
	balance.Mul(balance, v2FeeDenominator)
	balance.Sub(balance, new(big.Int).Mul(repay, v2FeeDelta))
	return balance.Cmp(new(big.Int).Mul(reserve, v2FeeDenominator)) >= 0
}
