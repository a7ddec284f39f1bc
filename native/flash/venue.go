package flash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tenorfi/core/state"
)

// V2SwapVenue rotates seized collateral through a constant-product pair.
// The pair address is recomputed from the factory the same way callback
// authentication does, so the venue can only trade against pools the
// configured factory deployed. Settlement is on the ledger: amountIn moves
// from holder to the pair and the quoted output moves back.
type V2SwapVenue struct {
	ledger       *state.Ledger
	pools        V2PoolSource
	factory      common.Address
	initCodeHash common.Hash
}

// NewV2SwapVenue builds a venue over pairs deployed by factory.
func NewV2SwapVenue(ledger *state.Ledger, pools V2PoolSource, factory common.Address, initCodeHash common.Hash) *V2SwapVenue {
	return &V2SwapVenue{ledger: ledger, pools: pools, factory: factory, initCodeHash: initCodeHash}
}

// Swap sells amountIn of tokenIn for tokenOut at the pair's quoted rate.
func (v *V2SwapVenue) Swap(tokenIn, tokenOut common.Address, amountIn *big.Int, holder common.Address) (*big.Int, error) {
	addr := PairAddress(v.factory, v.initCodeHash, PoolKey{TokenA: tokenIn, TokenB: tokenOut})
	pool, err := v.pools.V2Pool(addr)
	if err != nil {
		return nil, err
	}
	inIsToken0, ok := poolSide(tokenIn, pool.Token0(), pool.Token1())
	if !ok {
		return nil, errVenueTokenMissing
	}
	if _, ok := poolSide(tokenOut, pool.Token0(), pool.Token1()); !ok {
		return nil, errVenueTokenMissing
	}
	reserve0, reserve1 := pool.Reserves()
	reserveIn, reserveOut := reserve0, reserve1
	if !inIsToken0 {
		reserveIn, reserveOut = reserve1, reserve0
	}
	amountOut, err := AmountOutForAmountIn(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	if amountOut.Sign() == 0 {
		return nil, errInvalidAmount
	}
	if !SatisfiesV2Invariant(amountOut, amountIn, reserveIn, reserveOut) {
		return nil, ErrPoolInvariant
	}
	if err := v.ledger.Transfer(tokenIn, holder, addr, amountIn); err != nil {
		return nil, err
	}
	if err := v.ledger.Transfer(tokenOut, addr, holder, amountOut); err != nil {
		return nil, err
	}
	return amountOut, nil
}

// V3SwapVenue rotates seized collateral through a concentrated-liquidity
// pool at a fixed fee tier, quoting within the pool's current tick.
type V3SwapVenue struct {
	ledger       *state.Ledger
	pools        V3PoolSource
	factory      common.Address
	initCodeHash common.Hash
	feeTier      uint32
}

// NewV3SwapVenue builds a venue over pools deployed by factory at feeTier.
func NewV3SwapVenue(ledger *state.Ledger, pools V3PoolSource, factory common.Address, initCodeHash common.Hash, feeTier uint32) *V3SwapVenue {
	return &V3SwapVenue{ledger: ledger, pools: pools, factory: factory, initCodeHash: initCodeHash, feeTier: feeTier}
}

// Swap sells amountIn of tokenIn for tokenOut at the pool's quoted rate.
// The quote is cross-checked against the exact-output inverse before
// settling, the same way the adapters verify their repay figures.
func (v *V3SwapVenue) Swap(tokenIn, tokenOut common.Address, amountIn *big.Int, holder common.Address) (*big.Int, error) {
	addr := PoolAddress(v.factory, v.initCodeHash, PoolKey{TokenA: tokenIn, TokenB: tokenOut, FeeTier: v.feeTier})
	pool, err := v.pools.V3Pool(addr)
	if err != nil {
		return nil, err
	}
	inIsToken0, ok := poolSide(tokenIn, pool.Token0(), pool.Token1())
	if !ok {
		return nil, errVenueTokenMissing
	}
	if _, ok := poolSide(tokenOut, pool.Token0(), pool.Token1()); !ok {
		return nil, errVenueTokenMissing
	}
	sqrtPrice, liquidity := pool.SqrtPriceX96(), pool.Liquidity()
	amountOut, err := V3AmountOut(amountIn, sqrtPrice, liquidity, pool.FeePips(), inIsToken0)
	if err != nil {
		return nil, err
	}
	if amountOut.Sign() == 0 {
		return nil, errInvalidAmount
	}
	required, err := V3AmountIn(amountOut, sqrtPrice, liquidity, pool.FeePips(), inIsToken0)
	if err != nil {
		return nil, err
	}
	if required.Cmp(amountIn) > 0 {
		return nil, ErrPoolInvariant
	}
	if err := v.ledger.Transfer(tokenIn, holder, addr, amountIn); err != nil {
		return nil, err
	}
	if err := v.ledger.Transfer(tokenOut, addr, holder, amountOut); err != nil {
		return nil, err
	}
	return amountOut, nil
}
