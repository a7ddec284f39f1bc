package bond

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Bond describes a listed fixed-income debt instrument. Debt balances are
// denominated in the underlying asset's smallest unit; the bond token itself
// only identifies the instrument and its maturity.
type Bond struct {
	// Token is the debt-instrument identifier.
	Token common.Address
	// Underlying is the asset the debt is denominated and repaid in.
	Underlying common.Address
	// UnderlyingDecimals captures the underlying token's native precision.
	UnderlyingDecimals uint8
	// Maturity is the unix timestamp after which no new debt may be issued.
	Maturity int64
}

// Collateral describes an asset accepted as borrowing collateral.
type Collateral struct {
	Token common.Address
	// Decimals captures the token's native precision, used to normalise
	// amounts to 18 decimals before any cross-asset arithmetic.
	Decimals uint8
	// RatioBps is the required collateralization ratio in basis points
	// (e.g. 12500 = 125%).
	RatioBps uint64
}

// Position maintains the borrowing state for an individual account.
type Position struct {
	Borrower common.Address
	// CollateralAmounts maps collateral token to the locked amount.
	CollateralAmounts map[common.Address]*big.Int
	// DebtAmounts maps bond token to outstanding debt in underlying units.
	DebtAmounts map[common.Address]*big.Int
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := &Position{
		Borrower:          p.Borrower,
		CollateralAmounts: make(map[common.Address]*big.Int, len(p.CollateralAmounts)),
		DebtAmounts:       make(map[common.Address]*big.Int, len(p.DebtAmounts)),
	}
	for token, amount := range p.CollateralAmounts {
		clone.CollateralAmounts[token] = new(big.Int).Set(amount)
	}
	for token, amount := range p.DebtAmounts {
		clone.DebtAmounts[token] = new(big.Int).Set(amount)
	}
	return clone
}
