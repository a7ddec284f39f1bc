package flash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V2PoolState exposes the reserve view of a constant-product pair. Reserves
// returns the pair's last synced reserves; mid-callback these are the
// pre-swap values, which is exactly what the repay computation needs.
type V2PoolState interface {
	Token0() common.Address
	Token1() common.Address
	Reserves() (reserve0, reserve1 *big.Int)
}

// V3PoolState exposes the price and liquidity view of a concentrated
// liquidity pool. FeePips is the fee tier in hundredths of a basis point
// (e.g. 3000 = 0.3%).
type V3PoolState interface {
	Token0() common.Address
	Token1() common.Address
	FeePips() uint32
	SqrtPriceX96() *big.Int
	Liquidity() *big.Int
}

// V2PoolSource resolves live pair state by address at callback time. It is
// the adapter's equivalent of calling token0/token1/getReserves on the
// calling contract.
type V2PoolSource interface {
	V2Pool(addr common.Address) (V2PoolState, error)
}

// V3PoolSource resolves live concentrated-liquidity pool state by address.
type V3PoolSource interface {
	V3Pool(addr common.Address) (V3PoolState, error)
}

// SwapVenue converts seized collateral into the repay asset during
// settlement of cross-asset flash loans. Implementations sell amountIn of
// tokenIn held by holder and credit the proceeds back to holder.
type SwapVenue interface {
	Swap(tokenIn, tokenOut common.Address, amountIn *big.Int, holder common.Address) (*big.Int, error)
}

// LendingProtocol is the fixed-income protocol collaborator the adapters
// drive. The snapshot pair lets a failed settlement undo the liquidation
// itself, keeping the whole callback atomic.
type LendingProtocol interface {
	BondUnderlying(bond common.Address) (common.Address, error)
	Liquidate(liquidator, borrower, bond common.Address, repayAmount *big.Int, collateral common.Address) (*big.Int, error)
	SeizableCollateralAmount(bond common.Address, repayAmount *big.Int, collateral common.Address) (*big.Int, error)
	RepayAmount(collateral common.Address, seizableAmount *big.Int, bond common.Address) (*big.Int, error)
	Snapshot() int
	RevertToSnapshot(id int) error
	DiscardSnapshot(id int) error
}
