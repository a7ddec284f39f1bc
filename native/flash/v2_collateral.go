package flash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V2CollateralAdapter liquidates out of a constant-product flash swap that
// borrows the bond's underlying and repays the pool in seized collateral.
// Profit and turnout are denominated in the collateral asset.
type V2CollateralAdapter struct {
	orch *Orchestrator
}

// NewV2CollateralAdapter binds the collateral-settled variant to an
// orchestrator.
func NewV2CollateralAdapter(o *Orchestrator) *V2CollateralAdapter {
	return &V2CollateralAdapter{orch: o}
}

// OnFlashSwap handles the pair's swap callback. caller must be the
// underlying/collateral pair derived from the configured factory; sender
// receives any collateral profit.
func (a *V2CollateralAdapter) OnFlashSwap(caller, sender common.Address, amount0, amount1 *big.Int, data []byte) error {
	o := a.orch
	return o.run(VariantV2Collateral, func() (*settlement, error) {
		params, err := DecodeV2Params(data)
		if err != nil {
			return nil, err
		}
		underlying, err := o.protocol.BondUnderlying(params.Bond)
		if err != nil {
			return nil, err
		}
		if params.Collateral == underlying {
			return nil, ErrCollateralMismatch
		}
		if err := o.authenticateV2(caller, PoolKey{TokenA: underlying, TokenB: params.Collateral}); err != nil {
			return nil, err
		}
		pool, err := o.v2Pools.V2Pool(caller)
		if err != nil {
			return nil, err
		}
		underlyingIsToken0, ok := poolSide(underlying, pool.Token0(), pool.Token1())
		if !ok {
			return nil, ErrUnderlyingNotInPool
		}
		borrowed, err := flashBorrowAmount(amount0, amount1, underlyingIsToken0)
		if err != nil {
			return nil, err
		}
		reserve0, reserve1 := pool.Reserves()
		reserveIn, reserveOut := reserve1, reserve0
		if !underlyingIsToken0 {
			reserveIn, reserveOut = reserve0, reserve1
		}
		repayPool, err := RepayForBorrowed(borrowed, reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
		if !SatisfiesV2Invariant(borrowed, repayPool, reserveIn, reserveOut) {
			return nil, ErrPoolInvariant
		}
		// The realized outcome can never exceed the quoted seizure minus the
		// pool repay, so a doomed attempt exits before touching protocol
		// state.
		seizable, err := o.protocol.SeizableCollateralAmount(params.Bond, borrowed, params.Collateral)
		if err != nil {
			return nil, err
		}
		if new(big.Int).Sub(seizable, repayPool).Cmp(params.Turnout) < 0 {
			return nil, ErrTurnoutNotSatisfied
		}

		entryFloat := o.ledger.BalanceOf(params.Collateral, o.cfg.Adapter)
		seized, err := o.protocol.Liquidate(o.cfg.Adapter, params.Borrower, params.Bond, borrowed, params.Collateral)
		if err != nil {
			return nil, err
		}
		return &settlement{
			variant:     VariantV2Collateral,
			pool:        caller,
			sender:      sender,
			borrower:    params.Borrower,
			bond:        params.Bond,
			settleAsset: params.Collateral,
			entryFloat:  entryFloat,
			repayPool:   repayPool,
			turnout:     params.Turnout,
			swapAmount:  borrowed,
			seizeAmount: seized,
		}, nil
	})
}

// flashBorrowAmount extracts the single borrowed amount from a pair
// callback. Exactly one side must be non-zero, and it must be the expected
// token.
func flashBorrowAmount(amount0, amount1 *big.Int, wantToken0 bool) (*big.Int, error) {
	has0 := amount0 != nil && amount0.Sign() > 0
	has1 := amount1 != nil && amount1.Sign() > 0
	switch {
	case has0 && has1:
		return nil, ErrFlashBorrowBothTokens
	case !has0 && !has1:
		return nil, errInvalidAmount
	case has0 != wantToken0:
		return nil, ErrFlashBorrowWrongToken
	case has0:
		return amount0, nil
	default:
		return amount1, nil
	}
}
