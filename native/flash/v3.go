package flash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V3Adapter liquidates out of a concentrated-liquidity flash loan. The pool
// lends the bond's underlying, the adapter liquidates, rotates seized
// collateral back into the underlying through the configured swap venue when
// the assets differ, and repays principal plus the tier fee. Settlement is
// in the underlying.
type V3Adapter struct {
	orch *Orchestrator
}

// NewV3Adapter binds the concentrated-liquidity variant to an orchestrator.
func NewV3Adapter(o *Orchestrator) *V3Adapter {
	return &V3Adapter{orch: o}
}

// OnFlashCallback handles the pool's flash callback. fee0 and fee1 are the
// fees the pool reports for each token; the one on the underlying's side
// must match the fee recomputed from the payload's declared amount, which
// pins the declared amount to what was actually lent up to fee granularity.
// The residual ambiguity within one fee unit is harmless because settlement
// works from ledger balance deltas, not the declared amount.
func (a *V3Adapter) OnFlashCallback(caller, sender common.Address, fee0, fee1 *big.Int, data []byte) error {
	o := a.orch
	return o.run(VariantV3, func() (*settlement, error) {
		params, err := DecodeV3Params(data)
		if err != nil {
			return nil, err
		}
		underlying, err := o.protocol.BondUnderlying(params.Bond)
		if err != nil {
			return nil, err
		}
		pool, err := o.v3Pools.V3Pool(caller)
		if err != nil {
			return nil, ErrUnauthorizedCaller
		}
		token0, token1 := pool.Token0(), pool.Token1()
		underlyingIsToken0, ok := poolSide(underlying, token0, token1)
		if !ok {
			return nil, ErrUnderlyingNotInPool
		}
		if err := o.authenticateV3(caller, PoolKey{TokenA: token0, TokenB: token1, FeeTier: params.PoolFee}); err != nil {
			return nil, err
		}
		if pool.FeePips() != params.PoolFee {
			return nil, ErrAmountMismatch
		}
		amount := params.UnderlyingAmount
		if amount == nil || amount.Sign() <= 0 {
			return nil, errInvalidAmount
		}
		expectedFee, err := V3FlashFee(amount, params.PoolFee)
		if err != nil {
			return nil, err
		}
		reported, other := fee0, fee1
		if !underlyingIsToken0 {
			reported, other = fee1, fee0
		}
		if reported == nil || reported.Cmp(expectedFee) != 0 {
			return nil, ErrAmountMismatch
		}
		if other != nil && other.Sign() != 0 {
			return nil, ErrAmountMismatch
		}
		repayPool := new(big.Int).Add(amount, expectedFee)

		entryFloat := new(big.Int).Sub(o.ledger.BalanceOf(underlying, o.cfg.Adapter), amount)
		seized, err := o.protocol.Liquidate(o.cfg.Adapter, params.Borrower, params.Bond, amount, params.Collateral)
		if err != nil {
			return nil, err
		}
		if params.Collateral != underlying {
			if o.venue == nil {
				return nil, errSwapVenueUnconfigured
			}
			if _, err := o.venue.Swap(params.Collateral, underlying, seized, o.cfg.Adapter); err != nil {
				return nil, err
			}
		}
		return &settlement{
			variant:     VariantV3,
			pool:        caller,
			sender:      sender,
			borrower:    params.Borrower,
			bond:        params.Bond,
			settleAsset: underlying,
			entryFloat:  entryFloat,
			repayPool:   repayPool,
			turnout:     params.Turnout,
			swapAmount:  amount,
			seizeAmount: seized,
		}, nil
	})
}
