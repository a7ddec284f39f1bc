package flash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V2UnderlyingAdapter liquidates positions whose collateral is the bond's
// own underlying: it flash-borrows the underlying, repays the pool in the
// same asset at the pool's fee premium, and settles in the underlying. This
// is the variant that can draw a subsidy, since seized value may fall short
// of the same-asset repay.
type V2UnderlyingAdapter struct {
	orch *Orchestrator
}

// NewV2UnderlyingAdapter binds the underlying-settled variant to an
// orchestrator.
func NewV2UnderlyingAdapter(o *Orchestrator) *V2UnderlyingAdapter {
	return &V2UnderlyingAdapter{orch: o}
}

// OnFlashSwap handles the pair's swap callback. The pair is identified from
// its own token set: the underlying must be one of the pair's tokens, and
// caller must match the address the factory would derive for that set.
func (a *V2UnderlyingAdapter) OnFlashSwap(caller, sender common.Address, amount0, amount1 *big.Int, data []byte) error {
	o := a.orch
	return o.run(VariantV2Underlying, func() (*settlement, error) {
		params, err := DecodeV2Params(data)
		if err != nil {
			return nil, err
		}
		underlying, err := o.protocol.BondUnderlying(params.Bond)
		if err != nil {
			return nil, err
		}
		if params.Collateral != underlying {
			return nil, ErrCollateralMismatch
		}
		// The expected pair is identified from the caller's own token set, so
		// a caller the pool source does not know cannot be a genuine pair.
		pool, err := o.v2Pools.V2Pool(caller)
		if err != nil {
			return nil, ErrUnauthorizedCaller
		}
		token0, token1 := pool.Token0(), pool.Token1()
		underlyingIsToken0, ok := poolSide(underlying, token0, token1)
		if !ok {
			return nil, ErrUnderlyingNotInPool
		}
		if err := o.authenticateV2(caller, PoolKey{TokenA: token0, TokenB: token1}); err != nil {
			return nil, err
		}
		borrowed, err := flashBorrowAmount(amount0, amount1, underlyingIsToken0)
		if err != nil {
			return nil, err
		}
		reserve0, reserve1 := pool.Reserves()
		reserve := reserve0
		if !underlyingIsToken0 {
			reserve = reserve1
		}
		repayPool, err := SameAssetRepay(borrowed)
		if err != nil {
			return nil, err
		}
		if !SatisfiesV2InvariantSameAsset(borrowed, repayPool, reserve) {
			return nil, ErrPoolInvariant
		}

		entryFloat := new(big.Int).Sub(o.ledger.BalanceOf(underlying, o.cfg.Adapter), borrowed)
		seized, err := o.protocol.Liquidate(o.cfg.Adapter, params.Borrower, params.Bond, borrowed, underlying)
		if err != nil {
			return nil, err
		}
		return &settlement{
			variant:     VariantV2Underlying,
			pool:        caller,
			sender:      sender,
			borrower:    params.Borrower,
			bond:        params.Bond,
			settleAsset: underlying,
			entryFloat:  entryFloat,
			repayPool:   repayPool,
			turnout:     params.Turnout,
			swapAmount:  borrowed,
			seizeAmount: seized,
		}, nil
	})
}
