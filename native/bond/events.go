package bond

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tenorfi/core/types"
)

const (
	// EventTypeLiquidation marks a completed protocol liquidation.
	EventTypeLiquidation = "bond.liquidation"
)

// NewLiquidationEvent returns the canonical event payload for a liquidation.
func NewLiquidationEvent(liquidator, borrower, bondToken common.Address, repay *big.Int, collateral common.Address, seized *big.Int) *types.Event {
	attrs := map[string]string{
		"liquidator": liquidator.Hex(),
		"borrower":   borrower.Hex(),
		"bond":       bondToken.Hex(),
		"collateral": collateral.Hex(),
	}
	if repay != nil {
		attrs["repayAmount"] = repay.String()
	}
	if seized != nil {
		attrs["seizeAmount"] = seized.String()
	}
	return &types.Event{Type: EventTypeLiquidation, Attributes: attrs}
}
